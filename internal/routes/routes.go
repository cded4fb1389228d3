package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"gearguard/internal/controllers"
	"gearguard/internal/repositories"
	"gearguard/internal/services"
	"gearguard/pkg/clock"
	"gearguard/pkg/config"
	"gearguard/pkg/middleware"
)

func InitRouter(e *echo.Echo, dbConn *pgxpool.Pool, redisClient *redis.Client, logger *zap.Logger, cfg *config.Config) {
	logger.Info("InitRouter: Начало создания маршрутов")

	// --- ОБЩИЕ КОМПОНЕНТЫ ---
	actorMW := middleware.NewActorMiddleware(logger)
	api := e.Group("/api", actorMW.Actor)
	txManager := repositories.NewTxManager(dbConn)
	clk := clock.New()

	// --- РЕПОЗИТОРИИ ---
	userRepo := repositories.NewUserRepository(dbConn)
	departmentRepo := repositories.NewDepartmentRepository(dbConn)
	teamRepo := repositories.NewMaintenanceTeamRepository(dbConn)
	technicianRepo := repositories.NewTechnicianRepository(dbConn)
	equipmentRepo := repositories.NewEquipmentRepository(dbConn)
	requestRepo := repositories.NewRequestRepository(dbConn)
	auditRepo := repositories.NewRequestAuditLogRepository(dbConn)
	timeLogRepo := repositories.NewTimeLogRepository(dbConn)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	// --- СЕРВИСЫ ---
	userService := services.NewUserService(userRepo, logger)
	departmentService := services.NewDepartmentService(departmentRepo, equipmentRepo, logger)
	teamService := services.NewMaintenanceTeamService(teamRepo, equipmentRepo, technicianRepo, logger)
	technicianService := services.NewTechnicianService(txManager, technicianRepo, requestRepo, userRepo, teamRepo, logger)
	equipmentService := services.NewEquipmentService(
		txManager, equipmentRepo, requestRepo, auditRepo, timeLogRepo,
		cacheRepo, cfg.Cache.AutoFillTTL, logger,
	)
	importService := services.NewEquipmentImportService(dbConn, logger)
	requestService := services.NewRequestService(
		txManager, requestRepo, auditRepo, timeLogRepo, equipmentRepo, technicianRepo,
		services.NewPermissiveStagePolicy(), clk, logger,
	)
	auditService := services.NewAuditLogService(auditRepo)
	timeLogService := services.NewTimeLogService(timeLogRepo, requestRepo, technicianRepo, clk, logger)

	// --- КОНТРОЛЛЕРЫ ---
	userCtrl := controllers.NewUserController(userService, logger)
	departmentCtrl := controllers.NewDepartmentController(departmentService, logger)
	teamCtrl := controllers.NewMaintenanceTeamController(teamService, logger)
	technicianCtrl := controllers.NewTechnicianController(technicianService, logger)
	equipmentCtrl := controllers.NewEquipmentController(equipmentService, importService, logger)
	requestCtrl := controllers.NewRequestController(requestService, logger)
	auditCtrl := controllers.NewAuditLogController(auditService, logger)
	timeLogCtrl := controllers.NewTimeLogController(timeLogService, logger)

	// --- РОУТЕРЫ ---
	runUserRouter(api, userCtrl)
	runDepartmentRouter(api, departmentCtrl)
	runMaintenanceTeamRouter(api, teamCtrl)
	runTechnicianRouter(api, technicianCtrl)
	runEquipmentRouter(api, equipmentCtrl)
	runRequestRouter(api, requestCtrl, auditCtrl)
	runAuditLogRouter(api, auditCtrl)
	runTimeLogRouter(api, timeLogCtrl)

	logger.Info("InitRouter: Маршруты созданы")
}
