package controller

import (
	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/gin-gonic/gin"

	"github.com/songquanpeng/model-compare/model"
)

func (ctl *Controller) ListSlots(c *gin.Context) {
	slots, err := ctl.workspace.Slots(gmw.Ctx(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, slots)
}

func (ctl *Controller) AddSlot(c *gin.Context) {
	slot, err := ctl.workspace.AddSlot(gmw.Ctx(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, slot)
}

// AssignSlot takes {providerId, modelId, displayName}; the slot id comes
// from the path.
func (ctl *Controller) AssignSlot(c *gin.Context) {
	var cmd model.AssignSlotCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		respondError(c, &model.InvalidInputError{Err: errors.Wrap(err, "decode slot assignment")})
		return
	}
	cmd.SlotId = c.Param("id")

	slot, err := ctl.workspace.AssignSlot(gmw.Ctx(c), cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, slot)
}

func (ctl *Controller) ClearSlot(c *gin.Context) {
	slot, err := ctl.workspace.ClearSlot(gmw.Ctx(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, slot)
}
