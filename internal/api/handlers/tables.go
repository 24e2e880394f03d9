package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/pinball/internal/auth"
	"github.com/playmatatu/pinball/internal/config"
	"github.com/playmatatu/pinball/internal/game"
)

// CheckpointLoader returns the last stored snapshot of a table.
type CheckpointLoader interface {
	LoadCheckpoint(ctx context.Context, tableID string) (game.Snapshot, error)
}

// ReplaySource rebuilds a table that is no longer live.
type ReplaySource interface {
	Replay(ctx context.Context, layout game.Layout, tableID string, frame int) (game.Snapshot, error)
}

// issueToken signs operator tokens; tests replace it.
var issueToken = auth.IssueOperatorToken

// CreateTable opens a new live table and hands back an operator token for it.
func CreateTable(m *game.TableManager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Seed *int64 `json:"seed,omitempty"`
		}
		// An empty body is fine; the table then gets a random seed.
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
				return
			}
		}

		t, err := m.CreateTable(req.Seed)
		if errors.Is(err, game.ErrTooManyTables) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Too many open tables"})
			return
		}
		if err != nil {
			log.Printf("[API] CreateTable failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create table"})
			return
		}

		ttl := time.Duration(cfg.OperatorTokenHours) * time.Hour
		token, expiresAt, err := issueToken(cfg.JWTSecret, t.ID, ttl)
		if err != nil {
			log.Printf("[API] Issue token for table %s failed: %v", t.ID, err)
			if cerr := m.CloseTable(t.ID); cerr != nil {
				log.Printf("[API] Close table %s after token failure: %v", t.ID, cerr)
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create table"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"id":             t.ID,
			"seed":           t.Seed(),
			"operator_token": token,
			"expires_at":     expiresAt.UTC().Format(time.RFC3339),
			"ws_url":         "/api/v1/tables/" + t.ID + "/ws",
		})
	}
}

// GetTable returns the current snapshot of a table. Tables that are no longer
// live fall back to their last checkpoint.
func GetTable(m *game.TableManager, checkpoints CheckpointLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if t, err := m.GetTable(id); err == nil {
			c.JSON(http.StatusOK, gin.H{"id": id, "live": true, "snapshot": t.Snapshot()})
			return
		}

		if checkpoints == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Table not found"})
			return
		}
		snap, err := checkpoints.LoadCheckpoint(c.Request.Context(), id)
		if errors.Is(err, game.ErrTableNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Table not found"})
			return
		}
		if err != nil {
			log.Printf("[API] Load checkpoint for table %s failed: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load table"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id, "live": false, "snapshot": snap})
	}
}

// CloseTable ends a live table. Only its operator may close it.
func CloseTable(m *game.TableManager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			token = c.GetHeader("X-Operator-Token")
		}
		if err := auth.Authorize(cfg.JWTSecret, token, id); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Operator token required"})
			return
		}

		if err := m.CloseTable(id); err != nil {
			if errors.Is(err, game.ErrTableNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Table not found"})
				return
			}
			log.Printf("[API] Close table %s failed: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to close table"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id, "closed": true})
	}
}

// ReplayTable rebuilds a table at ?frame=N from its seed and inputs. Live
// tables replay from memory, closed ones from the journal.
func ReplayTable(m *game.TableManager, journal ReplaySource) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		frame, err := strconv.Atoi(c.Query("frame"))
		if err != nil || frame < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "frame must be a non-negative integer"})
			return
		}

		snap, err := m.Replay(id, frame)
		if errors.Is(err, game.ErrTableNotFound) && journal != nil {
			snap, err = journal.Replay(c.Request.Context(), m.Layout(), id, frame)
		}
		switch {
		case err == nil:
			c.JSON(http.StatusOK, gin.H{"id": id, "frame": frame, "snapshot": snap})
		case errors.Is(err, game.ErrTableNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Table not found"})
		case errors.Is(err, game.ErrFrameOutOfRange):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("[API] Replay table %s failed: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to replay table"})
		}
	}
}

// GetLayout returns the table layout every new table is built from.
func GetLayout(m *game.TableManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, m.Layout())
	}
}
