package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/poolvest/deposit-recon-api/recon"
	"github.com/poolvest/deposit-recon-api/types"
)

func (s *Server) handleHealthGet(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Snapshot()
	if snap == nil {
		JSON(w, http.StatusOK, map[string]interface{}{
			"health_status": "starting",
			"snapshot":      nil,
		})
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"health_status": "online",
		"snapshot": map[string]interface{}{
			"fetched_at":    snap.FetchedAt,
			"age_seconds":   int(time.Since(snap.FetchedAt).Seconds()),
			"partial":       snap.Partial,
			"source_errors": snap.SourceErrors,
			"payments":      len(snap.Payments),
		},
	})
}

func (s *Server) handlePaymentsGet(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Snapshot()
	if snap == nil {
		ERROR(w, http.StatusServiceUnavailable, fmt.Errorf("no snapshot available yet"))
		return
	}

	// Build filter from query parameters
	filter := recon.Filter{
		Query:    r.URL.Query().Get("query"),
		PoolType: r.URL.Query().Get("poolType"),
		Health:   types.HealthStatus(r.URL.Query().Get("status")),
	}

	rows := recon.List(snap.Payments, filter, time.Now())

	JSON(w, http.StatusOK, map[string]interface{}{
		"items":       rows,
		"total_count": len(rows),
		"partial":     snap.Partial,
		"fetched_at":  snap.FetchedAt,
	})
}

func (s *Server) handleSummaryGet(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Snapshot()
	if snap == nil {
		ERROR(w, http.StatusServiceUnavailable, fmt.Errorf("no snapshot available yet"))
		return
	}

	counts := recon.Summary(snap.Payments, time.Now())

	JSON(w, http.StatusOK, map[string]interface{}{
		"counts":      counts,
		"total_count": len(snap.Payments),
		"partial":     snap.Partial,
		"fetched_at":  snap.FetchedAt,
	})
}

func (s *Server) handleTimelineGet(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Snapshot()
	if snap == nil {
		ERROR(w, http.StatusServiceUnavailable, fmt.Errorf("no snapshot available yet"))
		return
	}

	rawKey := r.URL.Query().Get("key")
	key, err := recon.ParseKey(rawKey)
	if err != nil {
		ERROR(w, http.StatusBadRequest, err)
		return
	}

	payment, ok := snap.Payments[key.String()]
	if !ok {
		ERROR(w, http.StatusNotFound, fmt.Errorf("no payment found for key: %s", rawKey))
		return
	}

	now := time.Now()
	timeline := recon.BuildTimeline(payment, now)

	JSON(w, http.StatusOK, map[string]interface{}{
		"key":           payment.Key.String(),
		"health_status": payment.Health(now),
		"current_state": payment.CurrentState(),
		"path_type":     payment.PathType,
		"flags":         payment.Flags(now),
		"timeline":      timeline,
	})
}
