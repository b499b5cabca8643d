package main

import (
	"context"
	"dbs/src/booking"
	"dbs/src/db"
	"dbs/src/lib"
	"dbs/src/models"
	"dbs/src/types"
	"dbs/src/utils"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func roomHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/rooms", func(ctx *gin.Context) {
			var filters types.RoomsQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			query := db.Model(&models.Room{})
			if filters.DormID > 0 {
				query = query.Where(&models.Room{DormID: filters.DormID})
			}
			var rooms []models.Room
			if err := query.Preload("Dorm").Find(&rooms).Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": rooms, "count": len(rooms)})
		}).
		GET("/rooms/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var room models.Room
			if err := db.
				Model(&models.Room{}).
				Where(&models.Room{ID: params.ID}).
				Preload("Dorm").
				First(&room).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
				return
			}
			active, free, err := utils.GetRoomOccupancy(room.ID)
			if err == nil {
				room.Stats = &models.RoomStats{RoomID: room.ID, Active: active, Free: free}
			}
			ctx.JSON(http.StatusOK, gin.H{"data": room})
		}).
		GET("/rooms/:id/occupancy", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			cacheKey := fmt.Sprintf("room:%d:occupancy", params.ID)
			rd := lib.GetRedisClient()
			if rd != nil {
				cached, err := rd.Get(context.Background(), cacheKey).Result()
				if err == nil {
					var stats models.RoomStats
					if err := json.Unmarshal([]byte(cached), &stats); err == nil {
						ctx.JSON(http.StatusOK, gin.H{"data": stats, "cached": true})
						return
					}
				}
			}
			active, free, err := utils.GetRoomOccupancy(params.ID)
			if err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
				return
			}
			stats := models.RoomStats{RoomID: params.ID, Active: active, Free: free}
			if rd != nil {
				if bytes, err := json.Marshal(stats); err == nil {
					if err := rd.Set(context.Background(), cacheKey, bytes, 30*time.Second).Err(); err != nil {
						log.Printf("Could not cache occupancy for Room [%d]: %s\n", params.ID, err.Error())
					}
				}
			}
			ctx.JSON(http.StatusOK, gin.H{"data": stats})
		}).
		POST("/rooms", func(ctx *gin.Context) {
			role := ctx.GetString("role")
			if role != types.ROLE_OWNER && role != types.ROLE_ADMIN {
				ctx.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
				return
			}
			var body types.CreateRoomRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ownerId := ctx.GetUint("id")
			id, err := utils.CreateNewRoom(ownerId, &body)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": gin.H{"id": id}})
		}).
		PATCH("/rooms/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdateRoomRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			role := ctx.GetString("role")
			db := db.GetDb()
			var room models.Room
			if err := db.
				Model(&models.Room{}).
				Where(&models.Room{ID: params.ID}).
				Preload("Dorm").
				First(&room).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
				return
			}
			if role != types.ROLE_ADMIN && room.Dorm.OwnerID != userId {
				ctx.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
				return
			}
			values := map[string]any{}
			if body.RoomType != "" {
				values["room_type"] = body.RoomType
			}
			if body.Capacity > 0 {
				values["capacity"] = body.Capacity
			}
			if body.Price > 0 {
				values["price"] = body.Price
			}
			if len(values) == 0 {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
				return
			}
			err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.
					Model(&models.Room{}).
					Where(&models.Room{ID: room.ID}).
					Updates(values).
					Error; err != nil {
					return err
				}
				// capacity changes can flip the derived status
				return booking.Reconcile(tx, room.ID)
			})
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		DELETE("/rooms/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			role := ctx.GetString("role")
			db := db.GetDb()
			var room models.Room
			if err := db.
				Model(&models.Room{}).
				Where(&models.Room{ID: params.ID}).
				Preload("Dorm").
				First(&room).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
				return
			}
			if role != types.ROLE_ADMIN && room.Dorm.OwnerID != userId {
				ctx.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
				return
			}
			active, _, err := utils.GetRoomOccupancy(room.ID)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if active > 0 {
				ctx.JSON(http.StatusConflict, gin.H{"error": "room has active bookings"})
				return
			}
			if err := db.Delete(&models.Room{}, room.ID).Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
