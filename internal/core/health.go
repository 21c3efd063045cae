package core

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// healthCheckTimeout bounds all probes together.
const healthCheckTimeout = 2 * time.Second

// HealthProbe checks one dependency of the proxy.
type HealthProbe interface {
	Name() string
	Check(ctx context.Context) error
}

type componentStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type healthResponse struct {
	Status     string                     `json:"status"`
	Version    string                     `json:"version,omitempty"`
	Components map[string]componentStatus `json:"components,omitempty"`
}

// HandleHealth runs every probe concurrently under healthCheckTimeout and
// answers 200 when all pass, 503 otherwise. A probe that has not reported
// when the deadline passes counts as unhealthy.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := healthResponse{Status: "healthy", Version: s.Config.Build.Version}
	if len(s.HealthProbes) == 0 {
		JSON(w, r, http.StatusOK, resp)
		return
	}

	// Each probe owns one slot; nil means it has not reported yet.
	var (
		mu    sync.Mutex
		slots = make([]*componentStatus, len(s.HealthProbes))
		wg    sync.WaitGroup
	)
	for i, probe := range s.HealthProbes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st := runProbe(ctx, probe)
			mu.Lock()
			slots[i] = &st
			mu.Unlock()
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}

	mu.Lock()
	defer mu.Unlock()

	resp.Components = make(map[string]componentStatus, len(s.HealthProbes))
	for i, probe := range s.HealthProbes {
		st := componentStatus{Status: "unhealthy", Message: "health check timed out"}
		if slots[i] != nil {
			st = *slots[i]
		}
		if st.Status != "healthy" {
			resp.Status = "unhealthy"
		}
		resp.Components[probe.Name()] = st
	}

	if resp.Status != "healthy" {
		JSON(w, r, http.StatusServiceUnavailable, resp)
		return
	}
	JSON(w, r, http.StatusOK, resp)
}

func runProbe(ctx context.Context, p HealthProbe) (st componentStatus) {
	defer func() {
		if rvr := recover(); rvr != nil {
			st = componentStatus{Status: "unhealthy", Message: fmt.Sprintf("probe panicked: %v", rvr)}
		}
	}()
	if err := p.Check(ctx); err != nil {
		return componentStatus{Status: "unhealthy", Message: err.Error()}
	}
	return componentStatus{Status: "healthy"}
}
