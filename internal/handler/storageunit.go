package handler

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dsnakex/Dashboard-ELN/dao/model"
	"github.com/dsnakex/Dashboard-ELN/internal/resputil"
	"github.com/dsnakex/Dashboard-ELN/internal/util"
	"github.com/dsnakex/Dashboard-ELN/pkg/activity"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewStorageUnitMgr)
}

type StorageUnitMgr struct {
	name     string
	db       *gorm.DB
	recorder *activity.Recorder
}

func NewStorageUnitMgr(conf *RegisterConfig) Manager {
	return &StorageUnitMgr{name: "storage-units", db: conf.DB, recorder: conf.Recorder}
}

func (mgr *StorageUnitMgr) GetName() string { return mgr.name }

func (mgr *StorageUnitMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *StorageUnitMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/list", mgr.List)
	g.GET("/:id", mgr.Get)
	g.POST("/create", mgr.Create)
	g.PUT("/update/:id", mgr.Update)
	g.DELETE("/delete/:id", mgr.Delete)
}

func (mgr *StorageUnitMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type ListStorageUnitReq struct {
	PageReq
	UnitType     *string `form:"unitType"`
	ParentUnitID *uint   `form:"parentUnitId"`
	Search       string  `form:"search"`
}

type StorageUnitResp struct {
	model.StorageUnit
	SampleCount int64 `json:"sampleCount"`
}

// List godoc
// @Summary List active storage units with their sample occupancy
// @Tags storage-unit
// @Produce json
// @Security Bearer
// @Param unitType query string false "unit type"
// @Param parentUnitId query int false "parent unit"
// @Param search query string false "match name, building or room"
// @Success 200 {object} resputil.Response[ListResp[StorageUnitResp]] "storage units"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/storage-units/list [get]
func (mgr *StorageUnitMgr) List(c *gin.Context) {
	var req ListStorageUnitReq
	if err := c.ShouldBindQuery(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	q := mgr.db.WithContext(c).Model(&model.StorageUnit{}).Where("is_active = ?", true)
	if req.UnitType != nil {
		q = q.Where("unit_type = ?", *req.UnitType)
	}
	if req.ParentUnitID != nil {
		q = q.Where("parent_unit_id = ?", *req.ParentUnitID)
	}
	q = applySearch(q, req.Search, "name", "building", "room")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	var units []model.StorageUnit
	err := q.Order("name").
		Offset(req.Offset()).Limit(req.PageSize).
		Find(&units).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	rows := make([]StorageUnitResp, 0, len(units))
	for i := range units {
		var count int64
		err := mgr.db.WithContext(c).Model(&model.Sample{}).
			Where("storage_unit_id = ? AND is_active = ?", units[i].ID, true).
			Count(&count).Error
		if err != nil {
			resputil.Error(c, err.Error(), resputil.NotSpecified)
			return
		}
		rows = append(rows, StorageUnitResp{StorageUnit: units[i], SampleCount: count})
	}
	resputil.Success(c, ListResp[StorageUnitResp]{Rows: rows, Total: total})
}

// Get godoc
// @Summary Fetch one storage unit
// @Tags storage-unit
// @Produce json
// @Security Bearer
// @Param id path int true "storage unit id"
// @Success 200 {object} resputil.Response[StorageUnitResp] "storage unit"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/storage-units/{id} [get]
func (mgr *StorageUnitMgr) Get(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var unit model.StorageUnit
	if err := mgr.db.WithContext(c).First(&unit, uri.ID).Error; err != nil {
		if isNotFound(err) {
			resputil.NotFoundError(c, "storage unit", uri.ID)
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	var count int64
	err := mgr.db.WithContext(c).Model(&model.Sample{}).
		Where("storage_unit_id = ? AND is_active = ?", unit.ID, true).
		Count(&count).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, StorageUnitResp{StorageUnit: unit, SampleCount: count})
}

type CreateStorageUnitReq struct {
	Name         string   `json:"name" binding:"required"`
	UnitType     *string  `json:"unitType"`
	Description  *string  `json:"description"`
	Building     *string  `json:"building"`
	Room         *string  `json:"room"`
	Temperature  *float64 `json:"temperature"`
	Capacity     *int     `json:"capacity"`
	ParentUnitID *uint    `json:"parentUnitId"`
}

// Create godoc
// @Summary Create a storage unit, optionally nested under another
// @Tags storage-unit
// @Accept json
// @Produce json
// @Security Bearer
// @Param req body CreateStorageUnitReq true "storage unit"
// @Success 200 {object} resputil.Response[model.StorageUnit] "created storage unit"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/storage-units/create [post]
func (mgr *StorageUnitMgr) Create(c *gin.Context) {
	var req CreateStorageUnitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	if req.ParentUnitID != nil {
		var parent model.StorageUnit
		if err := mgr.db.WithContext(c).First(&parent, *req.ParentUnitID).Error; err != nil {
			if isNotFound(err) {
				resputil.NotFoundError(c, "storage unit", *req.ParentUnitID)
				return
			}
			resputil.Error(c, err.Error(), resputil.NotSpecified)
			return
		}
	}

	token := util.GetToken(c)
	unit := model.StorageUnit{
		Name:         req.Name,
		UnitType:     req.UnitType,
		Description:  req.Description,
		Building:     req.Building,
		Room:         req.Room,
		Temperature:  req.Temperature,
		Capacity:     req.Capacity,
		ParentUnitID: req.ParentUnitID,
		IsActive:     true,
		CreatedBy:    &token.UserID,
	}
	if err := mgr.db.WithContext(c).Create(&unit).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	recordEntity(c, mgr.recorder, model.ActionCreated, model.EntityStorageUnit, unit.ID, nil)
	resputil.Success(c, unit)
}

type UpdateStorageUnitReq struct {
	Name         *string  `json:"name"`
	UnitType     *string  `json:"unitType"`
	Description  *string  `json:"description"`
	Building     *string  `json:"building"`
	Room         *string  `json:"room"`
	Temperature  *float64 `json:"temperature"`
	Capacity     *int     `json:"capacity"`
	ParentUnitID *uint    `json:"parentUnitId"`
}

// Update godoc
// @Summary Update storage unit fields
// @Tags storage-unit
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "storage unit id"
// @Param req body UpdateStorageUnitReq true "fields to change"
// @Success 200 {object} resputil.Response[model.StorageUnit] "updated storage unit"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/storage-units/update/{id} [put]
func (mgr *StorageUnitMgr) Update(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var req UpdateStorageUnitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var unit model.StorageUnit
	if err := mgr.db.WithContext(c).First(&unit, uri.ID).Error; err != nil {
		if isNotFound(err) {
			resputil.NotFoundError(c, "storage unit", uri.ID)
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
		unit.Name = *req.Name
	}
	if req.UnitType != nil {
		updates["unit_type"] = *req.UnitType
		unit.UnitType = req.UnitType
	}
	if req.Description != nil {
		updates["description"] = *req.Description
		unit.Description = req.Description
	}
	if req.Building != nil {
		updates["building"] = *req.Building
		unit.Building = req.Building
	}
	if req.Room != nil {
		updates["room"] = *req.Room
		unit.Room = req.Room
	}
	if req.Temperature != nil {
		updates["temperature"] = *req.Temperature
		unit.Temperature = req.Temperature
	}
	if req.Capacity != nil {
		updates["capacity"] = *req.Capacity
		unit.Capacity = req.Capacity
	}
	if req.ParentUnitID != nil {
		if *req.ParentUnitID == unit.ID {
			resputil.BadRequestError(c, "a storage unit cannot be its own parent")
			return
		}
		updates["parent_unit_id"] = *req.ParentUnitID
		unit.ParentUnitID = req.ParentUnitID
	}
	if len(updates) > 0 {
		if err := mgr.db.WithContext(c).Model(&unit).Updates(updates).Error; err != nil {
			resputil.Error(c, err.Error(), resputil.NotSpecified)
			return
		}
		recordEntity(c, mgr.recorder, model.ActionUpdated, model.EntityStorageUnit, unit.ID, nil)
	}
	resputil.Success(c, unit)
}

// Delete godoc
// @Summary Deactivate a storage unit
// @Description Samples keep their storage reference. The unit only
// @Description disappears from listings.
// @Tags storage-unit
// @Produce json
// @Security Bearer
// @Param id path int true "storage unit id"
// @Success 200 {object} resputil.Response[string] "ok"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/storage-units/delete/{id} [delete]
func (mgr *StorageUnitMgr) Delete(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	rows, err := deactivate(mgr.db.WithContext(c), model.EntityStorageUnit, &model.StorageUnit{}, uri.ID)
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	if rows == 0 {
		resputil.NotFoundError(c, "storage unit", uri.ID)
		return
	}
	recordEntity(c, mgr.recorder, model.ActionDeleted, model.EntityStorageUnit, uri.ID, nil)
	resputil.Success(c, "Storage unit deactivated")
}
