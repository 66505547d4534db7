package container

import (
	"groundtruth-bot/config"
	app "groundtruth-bot/internal/application"
	"groundtruth-bot/internal/domain/port"
	"groundtruth-bot/internal/logger"
)

type Container struct {
	UserService        *app.UserService
	GroundTruthService *app.GroundTruthService
	Log                logger.Logger
}

func New(cfg *config.Config, userRepo port.UserRepository, results port.ResultRepository, preprocessor port.Preprocessor, log logger.Logger) *Container {
	userService := app.NewUserService(userRepo)
	groundTruthService := app.NewGroundTruthService(cfg, preprocessor, results, log)

	return &Container{
		UserService:        userService,
		GroundTruthService: groundTruthService,
		Log:                log,
	}
}
