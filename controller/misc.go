package controller

import (
	"github.com/gin-gonic/gin"

	"github.com/songquanpeng/model-compare/common"
	"github.com/songquanpeng/model-compare/common/config"
)

func (ctl *Controller) GetStatus(c *gin.Context) {
	respondOK(c, gin.H{
		"version":     common.Version,
		"start_time":  common.StartTime,
		"system_name": config.SystemName,
		"running":     ctl.orchestrator.Running(),
	})
}
