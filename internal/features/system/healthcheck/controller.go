package system_healthcheck

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"gorm.io/gorm"
)

type HealthcheckController struct {
	db *gorm.DB
}

type healthResponse struct {
	Status          string  `json:"status"`
	Database        string  `json:"database"`
	MemoryUsedPct   float64 `json:"memoryUsedPct"`
	DiskUsedPct     float64 `json:"diskUsedPct"`
	TimestampUnixMs int64   `json:"timestampUnixMs"`
}

func (c *HealthcheckController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/healthcheck", c.Healthcheck)
}

// Healthcheck
// @Summary Liveness and resource check
// @Tags system
// @Produce json
// @Success 200 {object} healthResponse
// @Router /healthcheck [get]
func (c *HealthcheckController) Healthcheck(ctx *gin.Context) {
	response := healthResponse{
		Status:          "ok",
		Database:        "ok",
		TimestampUnixMs: time.Now().UnixMilli(),
	}

	if sqlDB, err := c.db.DB(); err != nil || sqlDB.PingContext(ctx.Request.Context()) != nil {
		response.Status = "degraded"
		response.Database = "unreachable"
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		response.MemoryUsedPct = vm.UsedPercent
	}

	if usage, err := disk.Usage("/"); err == nil {
		response.DiskUsedPct = usage.UsedPercent
	}

	status := http.StatusOK
	if response.Status != "ok" {
		status = http.StatusServiceUnavailable
	}

	ctx.JSON(status, response)
}
