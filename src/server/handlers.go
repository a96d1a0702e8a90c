package server

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stock-forecaster/src/favorites"
	"stock-forecaster/src/helpers"
	"stock-forecaster/src/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	userCookie    = "sf_uid"
	cookieMaxAge  = 365 * 24 * 60 * 60
	usernameParam = "username"
)

type forecastQuery struct {
	Symbol       string    `form:"symbol" binding:"omitempty,max=20"`
	ManualSymbol string    `form:"manual_symbol" binding:"omitempty,max=20"`
	Years        int       `form:"years"`
	Start        time.Time `form:"start" time_format:"2006-01-02" time_utc:"1"`
	End          time.Time `form:"end" time_format:"2006-01-02" time_utc:"1"`
}

func (q forecastQuery) request() models.MPageRequest {
	return models.MPageRequest{
		Symbol:       q.Symbol,
		ManualSymbol: q.ManualSymbol,
		Years:        q.Years,
		Start:        q.Start,
		End:          q.End,
	}
}

type favoritesBody struct {
	Username string   `json:"username" binding:"omitempty,max=64"`
	Email    string   `json:"email" binding:"omitempty,email"`
	Symbols  []string `json:"symbols" binding:"max=50,dive,required"`
}

type indexData struct {
	Title       string
	Instruments []models.MInstrument
	Result      *models.MPageResult
	About       template.HTML
	Favorites   []string
	MinYears    int
	MaxYears    int
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

// getIndex renders the whole page server side. Bad query values fall back to
// defaults, the pipeline reports them as info messages.
func (s *FastAPIServer) getIndex(c *gin.Context) {
	years, _ := strconv.Atoi(c.Query("years"))
	res := s.Pages.BuildPage(c.Request.Context(), models.MPageRequest{
		Symbol:       c.Query("symbol"),
		ManualSymbol: c.Query("manual_symbol"),
		Years:        years,
	})

	c.HTML(http.StatusOK, "index.html", indexData{
		Title:       s.Config.UI.Title,
		Instruments: s.Pages.Instruments(),
		Result:      res,
		About:       template.HTML(res.AboutHTML),
		Favorites:   s.Favorites.Get(s.identity(c)),
		MinYears:    s.Config.Forecast.MinYears,
		MaxYears:    s.Config.Forecast.MaxYears,
	})
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getForecast(c *gin.Context) {
	var q forecastQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req := q.request()
	if err := s.Pages.ValidateRequest(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, s.Pages.BuildPage(c.Request.Context(), req))
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getInstruments(c *gin.Context) {
	instruments := s.Pages.Instruments()
	out := make([]gin.H, 0, len(instruments))
	for _, inst := range instruments {
		out = append(out, gin.H{"symbol": inst.Symbol, "name": inst.Name, "label": inst.Label()})
	}
	c.JSON(http.StatusOK, out)
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getFavorites(c *gin.Context) {
	c.JSON(http.StatusOK, s.Favorites.User(s.identity(c)))
}

func (s *FastAPIServer) postFavorites(c *gin.Context) {
	var body favoritesBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := s.identity(c)
	if body.Username != "" {
		id = userKey(body.Username)
		s.Favorites.SetProfile(id, body.Username, body.Email)
	}

	if _, err := s.Favorites.Save(id, body.Symbols); err != nil {
		var vErr *helpers.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.Logger.Error("Saving favorites failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save favorites"})
		return
	}

	c.JSON(http.StatusOK, s.Favorites.User(id))
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	connections := len(s.clients)
	s.stateMutex.RUnlock()

	status := s.Pages.MarketStatus()
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"connections": connections,
		"market_open": status.AnyOpen,
		"timestamp":   time.Now().Unix(),
	})
}

// -----------------------------------------------------------------------------
// Identity
// -----------------------------------------------------------------------------

// identity returns the favorites key of the caller: an explicit username, or
// the sf_uid cookie, issuing one on first visit.
func (s *FastAPIServer) identity(c *gin.Context) string {
	if name := c.Query(usernameParam); name != "" {
		return userKey(name)
	}
	if id, err := c.Cookie(userCookie); err == nil {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}

	id := favorites.NewUserID()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(userCookie, id, cookieMaxAge, "/", "", false, true)
	return id
}

func userKey(username string) string {
	return "user:" + strings.ToLower(strings.TrimSpace(username))
}
