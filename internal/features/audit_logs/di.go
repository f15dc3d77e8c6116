package audit_logs

import (
	"collabhub/internal/util/logger"

	"gorm.io/gorm"
)

var auditLogRepository *AuditLogRepository
var auditLogService *AuditLogService
var auditLogController *AuditLogController

func Setup(db *gorm.DB) {
	auditLogRepository = NewAuditLogRepository(db)
	auditLogService = &AuditLogService{
		auditLogRepository: auditLogRepository,
		logger:             logger.GetLogger(),
	}
	auditLogController = &AuditLogController{
		auditLogService: auditLogService,
	}
}

func GetAuditLogRepository() *AuditLogRepository {
	return auditLogRepository
}

func GetAuditLogService() *AuditLogService {
	return auditLogService
}

func GetAuditLogController() *AuditLogController {
	return auditLogController
}
