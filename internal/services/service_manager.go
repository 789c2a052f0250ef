package services

import (
	"log/slog"
	"time"

	"github.com/submisoon/assessment-service/internal/events"
	"github.com/submisoon/assessment-service/internal/repositories"
	"github.com/submisoon/assessment-service/internal/validator"
)

// ServiceManager hands out the service layer as one unit.
type ServiceManager interface {
	Assessment() AssessmentService
	Leaderboard() LeaderboardService
	Auth() AuthService
	Files() FileService
	FileAccess() FileAccessService
}

// ServiceManagerConfig carries everything the service layer depends on.
type ServiceManagerConfig struct {
	Repository repositories.Repository
	Publisher  events.EventPublisher
	Validator  *validator.Validator
	Logger     *slog.Logger
	Clock      Clock

	UploadDir         string
	FileSigningSecret string
	JWTSecret         string
	TokenTTL          time.Duration
}

type serviceManager struct {
	assessment  AssessmentService
	leaderboard LeaderboardService
	auth        AuthService
	files       FileService
	fileAccess  FileAccessService
}

func NewServiceManager(cfg ServiceManagerConfig) ServiceManager {
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock()
	}

	files := NewFileService(cfg.Repository, cfg.UploadDir, cfg.Logger)
	signer := NewURLSigner(cfg.FileSigningSecret, clock)

	return &serviceManager{
		assessment: NewAssessmentService(
			cfg.Repository,
			files,
			signer,
			NewMcqScorer(),
			cfg.Publisher,
			clock,
			cfg.Validator,
			cfg.Logger,
		),
		leaderboard: NewLeaderboardService(cfg.Repository, clock, cfg.Logger),
		auth:        NewAuthService(cfg.Repository, cfg.JWTSecret, cfg.TokenTTL, clock, cfg.Logger),
		files:       files,
		fileAccess:  NewFileAccessService(files, signer, cfg.Logger),
	}
}

func (m *serviceManager) Assessment() AssessmentService   { return m.assessment }
func (m *serviceManager) Leaderboard() LeaderboardService { return m.leaderboard }
func (m *serviceManager) Auth() AuthService               { return m.auth }
func (m *serviceManager) Files() FileService              { return m.files }
func (m *serviceManager) FileAccess() FileAccessService   { return m.fileAccess }
