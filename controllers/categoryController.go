package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DuaShare/models"
)

func GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, models.PrayerCategories)
}
