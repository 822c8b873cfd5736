package api

import (
	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/utils"
)

func requiredUuidParam(c *gin.Context, name string) (string, error) {
	id := c.Param(name)
	if err := utils.ValidateUuid(id); err != nil {
		return "", errors.Wrapf(models.BadParameterError, "%s must be a UUID", name)
	}
	return id, nil
}
