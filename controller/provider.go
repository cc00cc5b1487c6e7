package controller

import (
	"strconv"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/gin-gonic/gin"

	"github.com/songquanpeng/model-compare/model"
	relaymodel "github.com/songquanpeng/model-compare/relay/model"
)

func (ctl *Controller) ListProviders(c *gin.Context) {
	providers, err := ctl.workspace.Providers(gmw.Ctx(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, providers)
}

func bindProvider(c *gin.Context) (relaymodel.Provider, error) {
	var p relaymodel.Provider
	if err := c.ShouldBindJSON(&p); err != nil {
		return p, &model.InvalidInputError{Err: errors.Wrap(err, "decode provider")}
	}
	return p, nil
}

func (ctl *Controller) CreateProvider(c *gin.Context) {
	p, err := bindProvider(c)
	if err != nil {
		respondError(c, err)
		return
	}
	created, err := ctl.workspace.CreateProvider(gmw.Ctx(c), p)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, created)
}

func (ctl *Controller) UpdateProvider(c *gin.Context) {
	p, err := bindProvider(c)
	if err != nil {
		respondError(c, err)
		return
	}
	updated, err := ctl.workspace.UpdateProvider(gmw.Ctx(c), c.Param("id"), p)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, updated)
}

// DeleteProvider also clears every slot that used the provider.
func (ctl *Controller) DeleteProvider(c *gin.Context) {
	if err := ctl.workspace.DeleteProvider(gmw.Ctx(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}

// ListProviderModels answers from the models cache unless ?refresh=true.
func (ctl *Controller) ListProviderModels(c *gin.Context) {
	refresh, _ := strconv.ParseBool(c.Query("refresh"))
	models, err := ctl.workspace.AvailableModels(gmw.Ctx(c), c.Param("id"), refresh)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, models)
}
