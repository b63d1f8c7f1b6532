package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"invoicehub/internal/common"
	"invoicehub/internal/logger"
	"invoicehub/internal/models"
	"invoicehub/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultGSTPollInterval = 2 * time.Second
	DefaultGSTPollTimeout  = 10 * time.Second
)

// GSTService verifies GST numbers against records filled in by an external verifier.
type GSTService interface {
	Verify(ctx context.Context, gstNumber string) (*models.GSTInfo, error)
	Exists(ctx context.Context, gstNumber string) (*models.GSTInfo, error)
}

type gstService struct {
	repo     repositories.GSTInfoRepository
	interval time.Duration
	timeout  time.Duration
	group    singleflight.Group
	log      zerolog.Logger

	mu      sync.Mutex
	flights map[string]*gstFlight
}

// gstFlight is the shared poll for one GST number. Its context is cancelled
// once the last waiting caller leaves.
type gstFlight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

func NewGSTService(repo repositories.GSTInfoRepository, interval, timeout time.Duration) GSTService {
	if interval <= 0 {
		interval = DefaultGSTPollInterval
	}
	if timeout <= 0 {
		timeout = DefaultGSTPollTimeout
	}
	return &gstService{
		repo:     repo,
		interval: interval,
		timeout:  timeout,
		log:      logger.WithComponent("gst-service"),
		flights:  make(map[string]*gstFlight),
	}
}

func (s *gstService) Exists(ctx context.Context, gstNumber string) (*models.GSTInfo, error) {
	gst, err := common.NormalizeGSTIN(gstNumber)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByNumber(ctx, gst)
}

func (s *gstService) Verify(ctx context.Context, gstNumber string) (*models.GSTInfo, error) {
	gst, err := common.NormalizeGSTIN(gstNumber)
	if err != nil {
		return nil, err
	}

	info, err := s.repo.GetByNumber(ctx, gst)
	switch {
	case err == nil:
	case common.IsKind(err, common.KindNotFound):
		info, err = s.repo.CreateRequested(ctx, &models.GSTInfo{ID: uuid.New(), GSTNumber: gst})
		if err != nil {
			return nil, err
		}
		s.log.Info().Str("gst_number", gst).Msg("GST verification requested")
	default:
		return nil, err
	}

	if info.Completed() {
		return info, nil
	}

	// Callers for the same number share one loop. It stops when every
	// caller has gone or the poll ceiling is reached.
	flight := s.join(ctx, gst)
	defer s.leave(gst, flight)

	ch := s.group.DoChan(gst, func() (any, error) {
		return s.poll(flight.ctx, gst)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.GSTInfo), nil
	}
}

func (s *gstService) join(ctx context.Context, gst string) *gstFlight {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.flights[gst]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &gstFlight{ctx: fctx, cancel: cancel}
		s.flights[gst] = f
	}
	f.waiters++
	return f
}

func (s *gstService) leave(gst string, f *gstFlight) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	if s.flights[gst] == f {
		delete(s.flights, gst)
		// A later caller must not attach to the cancelled loop.
		s.group.Forget(gst)
	}
}

func (s *gstService) poll(ctx context.Context, gst string) (*models.GSTInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				s.log.Warn().Str("gst_number", gst).Dur("timeout", s.timeout).Msg("GST polling timeout")
				return nil, common.Timeout("GST verification timeout. Please try again later.")
			}
			return nil, ctx.Err()
		case <-ticker.C:
			info, err := s.repo.GetByNumber(ctx, gst)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				s.log.Error().Err(err).Str("gst_number", gst).Msg("GST polling error")
				return nil, err
			}
			if info.Completed() {
				s.log.Info().Str("gst_number", gst).Msg("GST data retrieved")
				return info, nil
			}
		}
	}
}
