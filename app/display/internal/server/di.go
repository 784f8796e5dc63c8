package server

import (
	"github.com/google/wire"

	"github.com/iWorld-y/startup_pulse/app/display/internal/data"
	"github.com/iWorld-y/startup_pulse/app/display/internal/service"
	"github.com/iWorld-y/startup_pulse/app/display/internal/usecase"
)

// ProviderSet 是门户服务的依赖注入 Provider 集合
var ProviderSet = wire.NewSet(
	// Server providers
	NewHTTPServer,
	NewPulseEngine,

	// Data providers
	data.NewData,
	data.NewUserRepo,
	data.NewSignalRepo,

	// UseCase providers
	usecase.NewUserUseCase,
	usecase.NewSignalUseCase,

	// Service providers
	service.NewPortalService,
)
