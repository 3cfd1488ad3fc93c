package handlers

import (
	"errors"
	"log"
	"net/http"

	"brigade-backend/internal/middleware"
	"brigade-backend/internal/models"
	"brigade-backend/internal/services"
	"brigade-backend/internal/web"
)

const (
	loginFailedText   = "Login fehlgeschlagen"
	usernameTakenText = "Benutzername existiert bereits"
	tooManyLoginsText = "Zu viele Anmeldeversuche, bitte später erneut versuchen"
)

// PageHandler serves the form-based browser pages. Every failure to
// identify the caller ends on the login page, never in an error status.
type PageHandler struct {
	authService      *services.AuthService
	reportingService *services.ReportingService
	jwt              *middleware.JWTAuth
	renderer         *web.Renderer
	leaderboardSize  int
}

func NewPageHandler(authService *services.AuthService, reportingService *services.ReportingService, jwt *middleware.JWTAuth, renderer *web.Renderer, leaderboardSize int) *PageHandler {
	return &PageHandler{
		authService:      authService,
		reportingService: reportingService,
		jwt:              jwt,
		renderer:         renderer,
		leaderboardSize:  leaderboardSize,
	}
}

func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	account, ok := h.currentAccount(w, r)
	if !ok {
		return
	}

	records, err := h.reportingService.Leaderboard(r.Context(), h.leaderboardSize)
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	series, groups, err := h.reportingService.GroupedTimeSeries(r.Context())
	if err != nil {
		h.pageError(w, r, err)
		return
	}

	page := web.IndexPage{User: account, Groups: groups, Series: seriesJSON(series)}
	for _, rec := range records {
		page.Leaderboard = append(page.Leaderboard, models.LeaderboardEntry{
			GroupName:      rec.GroupName,
			Timestamp:      rec.Timestamp.Format(models.TableTimestampLayout),
			Time:           rec.Time,
			TimeWithErrors: rec.TimeWithErrors,
		})
	}
	h.render(w, r, http.StatusOK, "index", page)
}

func (h *PageHandler) Table(w http.ResponseWriter, r *http.Request) {
	account, ok := h.currentAccount(w, r)
	if !ok {
		return
	}

	entries, err := h.reportingService.HistoryEntries(r.Context(), account.Username)
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "table", web.TablePage{User: account, Entries: entries})
}

func (h *PageHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login", web.FormPage{})
}

func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, "login", web.FormPage{Error: loginFailedText})
		return
	}
	req := models.LoginRequest{Username: r.PostForm.Get("username"), Password: r.PostForm.Get("password")}

	token, err := h.authService.Login(r.Context(), req)
	if err != nil {
		var (
			rateLimitErr  *services.RateLimitError
			validationErr *services.ValidationError
			unauthErr     *services.UnauthorizedError
		)
		switch {
		case errors.As(err, &rateLimitErr):
			h.render(w, r, http.StatusTooManyRequests, "login", web.FormPage{Username: req.Username, Error: tooManyLoginsText})
		case errors.As(err, &validationErr), errors.As(err, &unauthErr):
			h.render(w, r, http.StatusUnauthorized, "login", web.FormPage{Username: req.Username, Error: loginFailedText})
		default:
			h.pageError(w, r, err)
		}
		return
	}

	h.jwt.SetCookie(w, token.AccessToken)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *PageHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "register", web.FormPage{})
}

func (h *PageHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, "register", web.FormPage{Error: "Ungültige Eingabe"})
		return
	}
	req := models.RegisterRequest{Username: r.PostForm.Get("username"), Password: r.PostForm.Get("password")}

	if _, err := h.authService.Register(r.Context(), req); err != nil {
		var (
			conflictErr   *services.ConflictError
			validationErr *services.ValidationError
		)
		switch {
		case errors.As(err, &conflictErr):
			h.render(w, r, http.StatusConflict, "register", web.FormPage{Username: req.Username, Error: usernameTakenText})
		case errors.As(err, &validationErr):
			h.render(w, r, http.StatusBadRequest, "register", web.FormPage{Username: req.Username, Error: "Benutzername und Passwort sind erforderlich"})
		default:
			h.pageError(w, r, err)
		}
		return
	}

	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *PageHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.jwt.ClearCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// currentAccount resolves the token's account. A token for a deleted
// account is treated like no token at all.
func (h *PageHandler) currentAccount(w http.ResponseWriter, r *http.Request) (*models.Account, bool) {
	account, err := h.authService.Account(r.Context(), middleware.GetAccountID(r.Context()))
	if err != nil {
		var notFoundErr *services.NotFoundError
		if errors.As(err, &notFoundErr) {
			h.jwt.ClearCookie(w)
			http.Redirect(w, r, "/login", http.StatusFound)
			return nil, false
		}
		h.pageError(w, r, err)
		return nil, false
	}
	return account, true
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, data interface{}) {
	if err := h.renderer.Render(w, status, name, data); err != nil {
		h.pageError(w, r, err)
	}
}

func (h *PageHandler) pageError(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
