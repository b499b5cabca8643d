package main

import (
	"dbs/src/db"
	"dbs/src/models"
	"dbs/src/types"
	"dbs/src/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

func dormHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/dorms", func(ctx *gin.Context) {
			db := db.GetDb()
			var dorms []models.Dorm
			if err := db.
				Model(&models.Dorm{}).
				Where(&models.Dorm{Verified: true}).
				Preload("Rooms").
				Find(&dorms).
				Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": dorms, "count": len(dorms)})
		}).
		GET("/dorms/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var dorm models.Dorm
			if err := db.
				Model(&models.Dorm{}).
				Where(&models.Dorm{ID: params.ID}).
				Preload("Rooms").
				First(&dorm).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "dorm not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": dorm})
		}).
		POST("/dorms", func(ctx *gin.Context) {
			role := ctx.GetString("role")
			if role != types.ROLE_OWNER && role != types.ROLE_ADMIN {
				ctx.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
				return
			}
			var body types.CreateDormRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ownerId := ctx.GetUint("id")
			id, err := utils.CreateNewDorm(ownerId, &body)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": gin.H{"id": id}})
		}).
		PATCH("/dorms/:id/verify", func(ctx *gin.Context) {
			if ctx.GetString("role") != types.ROLE_ADMIN {
				ctx.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
				return
			}
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			result := db.
				Model(&models.Dorm{}).
				Where(&models.Dorm{ID: params.ID}).
				Update("verified", true)
			if result.Error != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": result.Error.Error()})
				return
			}
			if result.RowsAffected == 0 {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "dorm not found"})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
