package apitest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turnupspot/turnupspot-client/internal/domain"
)

// SetGameDay seeds today's game day info and roster for a group
func (b *Backend) SetGameDay(groupID string, info domain.GameDayInfo, players []domain.Player) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gameDays[groupID] = &info
	b.players[groupID] = append([]domain.Player(nil), players...)
}

// Players returns the stored roster of a group
func (b *Backend) Players(groupID string) []domain.Player {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.Player(nil), b.players[groupID]...)
}

func (b *Backend) registerGameDay(api *gin.RouterGroup) {
	g := api.Group("/games/game-day/:id")
	g.GET("", b.gameDayInfo)
	g.GET("/players", b.gameDayPlayers)
	g.POST("/check-in", b.checkIn)
}

func (b *Backend) gameDayInfo(c *gin.Context) {
	if _, ok := b.currentUser(c); !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	info, ok := b.gameDays[c.Param("id")]
	if !ok {
		detail(c, http.StatusNotFound, "Sport group not found")
		return
	}
	c.JSON(http.StatusOK, info)
}

func (b *Backend) gameDayPlayers(c *gin.Context) {
	if _, ok := b.currentUser(c); !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.gameDays[c.Param("id")]; !ok {
		detail(c, http.StatusNotFound, "Sport group not found")
		return
	}
	out := b.players[c.Param("id")]
	if out == nil {
		out = []domain.Player{}
	}
	c.JSON(http.StatusOK, out)
}

func (b *Backend) checkIn(c *gin.Context) {
	u, ok := b.currentUser(c)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := c.Param("id")
	info, exists := b.gameDays[id]
	if !exists {
		detail(c, http.StatusNotFound, "Sport group not found")
		return
	}
	if !info.IsPlayingDay {
		detail(c, http.StatusBadRequest, "Today is not a playing day")
		return
	}
	if !info.CheckInEnabled {
		detail(c, http.StatusBadRequest, "Check-in is not enabled yet")
		return
	}

	now := time.Now().Format("15:04:05")
	for i := range b.players[id] {
		p := &b.players[id][i]
		if p.UserID == u.ID {
			p.Status = domain.PlayerArrived
			p.ArrivalTime = now
			c.JSON(http.StatusOK, gin.H{"message": "Checked in successfully"})
			return
		}
	}
	b.players[id] = append(b.players[id], domain.Player{
		ID:          b.newLocalID(),
		UserID:      u.ID,
		Name:        u.FullName(),
		Status:      domain.PlayerArrived,
		ArrivalTime: now,
	})
	c.JSON(http.StatusOK, gin.H{"message": "Checked in successfully"})
}
