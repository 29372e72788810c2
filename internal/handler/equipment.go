package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dsnakex/Dashboard-ELN/dao/model"
	"github.com/dsnakex/Dashboard-ELN/internal/resputil"
	"github.com/dsnakex/Dashboard-ELN/internal/util"
	"github.com/dsnakex/Dashboard-ELN/pkg/activity"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewEquipmentMgr)
}

type EquipmentMgr struct {
	name     string
	db       *gorm.DB
	recorder *activity.Recorder
}

func NewEquipmentMgr(conf *RegisterConfig) Manager {
	return &EquipmentMgr{name: "equipment", db: conf.DB, recorder: conf.Recorder}
}

func (mgr *EquipmentMgr) GetName() string { return mgr.name }

func (mgr *EquipmentMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *EquipmentMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/list", mgr.List)
	g.GET("/:id", mgr.Get)
	g.POST("/create", mgr.Create)
	g.PUT("/update/:id", mgr.Update)
	g.DELETE("/delete/:id", mgr.Delete)
}

func (mgr *EquipmentMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type ListEquipmentReq struct {
	PageReq
	EquipmentType *string                `form:"equipmentType"`
	Status        *model.EquipmentStatus `form:"status" binding:"omitempty,oneof=operational maintenance out_of_service reserved"`
	Bookable      *bool                  `form:"bookable"`
	Search        string                 `form:"search"`
}

// List godoc
// @Summary List active equipment with filters and pagination
// @Tags equipment
// @Produce json
// @Security Bearer
// @Param equipmentType query string false "equipment type"
// @Param status query string false "operational status"
// @Param bookable query bool false "only bookable instruments"
// @Param search query string false "match name, manufacturer or serial number"
// @Success 200 {object} resputil.Response[ListResp[model.Equipment]] "equipment"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/equipment/list [get]
func (mgr *EquipmentMgr) List(c *gin.Context) {
	var req ListEquipmentReq
	if err := c.ShouldBindQuery(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	q := mgr.db.WithContext(c).Model(&model.Equipment{}).Where("is_active = ?", true)
	if req.EquipmentType != nil {
		q = q.Where("equipment_type = ?", *req.EquipmentType)
	}
	if req.Status != nil {
		q = q.Where("status = ?", *req.Status)
	}
	if req.Bookable != nil {
		q = q.Where("is_bookable = ?", *req.Bookable)
	}
	q = applySearch(q, req.Search, "name", "manufacturer", "serial_number")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	var equipment []model.Equipment
	err := q.Order("name").
		Offset(req.Offset()).Limit(req.PageSize).
		Find(&equipment).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, ListResp[model.Equipment]{Rows: equipment, Total: total})
}

// Get godoc
// @Summary Fetch one piece of equipment
// @Tags equipment
// @Produce json
// @Security Bearer
// @Param id path int true "equipment id"
// @Success 200 {object} resputil.Response[model.Equipment] "equipment"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/equipment/{id} [get]
func (mgr *EquipmentMgr) Get(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var equipment model.Equipment
	if err := mgr.db.WithContext(c).First(&equipment, uri.ID).Error; err != nil {
		if isNotFound(err) {
			resputil.NotFoundError(c, "equipment", uri.ID)
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, equipment)
}

type CreateEquipmentReq struct {
	Name                    string                 `json:"name" binding:"required"`
	EquipmentType           *string                `json:"equipmentType"`
	Manufacturer            *string                `json:"manufacturer"`
	EquipModel              *string                `json:"model"`
	SerialNumber            *string                `json:"serialNumber"`
	Building                *string                `json:"building"`
	Room                    *string                `json:"room"`
	Status                  *model.EquipmentStatus `json:"status" binding:"omitempty,oneof=operational maintenance out_of_service reserved"`
	LastMaintenanceDate     *time.Time             `json:"lastMaintenanceDate"`
	NextMaintenanceDate     *time.Time             `json:"nextMaintenanceDate"`
	MaintenanceIntervalDays *int                   `json:"maintenanceIntervalDays"`
	MaintenanceNotes        *string                `json:"maintenanceNotes"`
	IsBookable              *bool                  `json:"isBookable"`
	BookingURL              *string                `json:"bookingUrl"`
}

// Create godoc
// @Summary Register equipment in the inventory
// @Tags equipment
// @Accept json
// @Produce json
// @Security Bearer
// @Param req body CreateEquipmentReq true "equipment"
// @Success 200 {object} resputil.Response[model.Equipment] "created equipment"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/equipment/create [post]
func (mgr *EquipmentMgr) Create(c *gin.Context) {
	var req CreateEquipmentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	token := util.GetToken(c)
	equipment := model.Equipment{
		Name:                    req.Name,
		EquipmentType:           req.EquipmentType,
		Manufacturer:            req.Manufacturer,
		EquipModel:              req.EquipModel,
		SerialNumber:            req.SerialNumber,
		Building:                req.Building,
		Room:                    req.Room,
		Status:                  model.EquipmentOperational,
		LastMaintenanceDate:     req.LastMaintenanceDate,
		NextMaintenanceDate:     req.NextMaintenanceDate,
		MaintenanceIntervalDays: req.MaintenanceIntervalDays,
		MaintenanceNotes:        req.MaintenanceNotes,
		BookingURL:              req.BookingURL,
		IsActive:                true,
		CreatedBy:               &token.UserID,
	}
	if req.Status != nil {
		equipment.Status = *req.Status
	}
	if req.IsBookable != nil {
		equipment.IsBookable = *req.IsBookable
	}
	if err := mgr.db.WithContext(c).Create(&equipment).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	recordEntity(c, mgr.recorder, model.ActionCreated, model.EntityEquipment, equipment.ID, nil)
	resputil.Success(c, equipment)
}

type UpdateEquipmentReq struct {
	Name                    *string                `json:"name"`
	EquipmentType           *string                `json:"equipmentType"`
	Manufacturer            *string                `json:"manufacturer"`
	EquipModel              *string                `json:"model"`
	SerialNumber            *string                `json:"serialNumber"`
	Building                *string                `json:"building"`
	Room                    *string                `json:"room"`
	Status                  *model.EquipmentStatus `json:"status" binding:"omitempty,oneof=operational maintenance out_of_service reserved"`
	LastMaintenanceDate     *time.Time             `json:"lastMaintenanceDate"`
	NextMaintenanceDate     *time.Time             `json:"nextMaintenanceDate"`
	MaintenanceIntervalDays *int                   `json:"maintenanceIntervalDays"`
	MaintenanceNotes        *string                `json:"maintenanceNotes"`
	IsBookable              *bool                  `json:"isBookable"`
	BookingURL              *string                `json:"bookingUrl"`
}

// Update godoc
// @Summary Update equipment fields
// @Description Recording a maintenance date with a known interval also
// @Description advances the next maintenance date.
// @Tags equipment
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "equipment id"
// @Param req body UpdateEquipmentReq true "fields to change"
// @Success 200 {object} resputil.Response[model.Equipment] "updated equipment"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/equipment/update/{id} [put]
func (mgr *EquipmentMgr) Update(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var req UpdateEquipmentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var equipment model.Equipment
	if err := mgr.db.WithContext(c).First(&equipment, uri.ID).Error; err != nil {
		if isNotFound(err) {
			resputil.NotFoundError(c, "equipment", uri.ID)
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	before := equipment.Status
	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
		equipment.Name = *req.Name
	}
	if req.EquipmentType != nil {
		updates["equipment_type"] = *req.EquipmentType
		equipment.EquipmentType = req.EquipmentType
	}
	if req.Manufacturer != nil {
		updates["manufacturer"] = *req.Manufacturer
		equipment.Manufacturer = req.Manufacturer
	}
	if req.EquipModel != nil {
		updates["equip_model"] = *req.EquipModel
		equipment.EquipModel = req.EquipModel
	}
	if req.SerialNumber != nil {
		updates["serial_number"] = *req.SerialNumber
		equipment.SerialNumber = req.SerialNumber
	}
	if req.Building != nil {
		updates["building"] = *req.Building
		equipment.Building = req.Building
	}
	if req.Room != nil {
		updates["room"] = *req.Room
		equipment.Room = req.Room
	}
	if req.Status != nil {
		updates["status"] = *req.Status
		equipment.Status = *req.Status
	}
	if req.LastMaintenanceDate != nil {
		updates["last_maintenance_date"] = *req.LastMaintenanceDate
		equipment.LastMaintenanceDate = req.LastMaintenanceDate
		interval := equipment.MaintenanceIntervalDays
		if req.MaintenanceIntervalDays != nil {
			interval = req.MaintenanceIntervalDays
		}
		if req.NextMaintenanceDate == nil && interval != nil {
			next := req.LastMaintenanceDate.AddDate(0, 0, *interval)
			updates["next_maintenance_date"] = next
			equipment.NextMaintenanceDate = &next
		}
	}
	if req.NextMaintenanceDate != nil {
		updates["next_maintenance_date"] = *req.NextMaintenanceDate
		equipment.NextMaintenanceDate = req.NextMaintenanceDate
	}
	if req.MaintenanceIntervalDays != nil {
		updates["maintenance_interval_days"] = *req.MaintenanceIntervalDays
		equipment.MaintenanceIntervalDays = req.MaintenanceIntervalDays
	}
	if req.MaintenanceNotes != nil {
		updates["maintenance_notes"] = *req.MaintenanceNotes
		equipment.MaintenanceNotes = req.MaintenanceNotes
	}
	if req.IsBookable != nil {
		updates["is_bookable"] = *req.IsBookable
		equipment.IsBookable = *req.IsBookable
	}
	if req.BookingURL != nil {
		updates["booking_url"] = *req.BookingURL
		equipment.BookingURL = req.BookingURL
	}

	if len(updates) > 0 {
		if err := mgr.db.WithContext(c).Model(&equipment).Updates(updates).Error; err != nil {
			resputil.Error(c, err.Error(), resputil.NotSpecified)
			return
		}
		changes := activity.Diff(
			map[string]any{"status": before},
			map[string]any{"status": equipment.Status},
		)
		recordEntity(c, mgr.recorder, model.ActionUpdated, model.EntityEquipment, equipment.ID, changes)
	}
	resputil.Success(c, equipment)
}

// Delete godoc
// @Summary Deactivate equipment
// @Tags equipment
// @Produce json
// @Security Bearer
// @Param id path int true "equipment id"
// @Success 200 {object} resputil.Response[string] "ok"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/equipment/delete/{id} [delete]
func (mgr *EquipmentMgr) Delete(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	rows, err := deactivate(mgr.db.WithContext(c), model.EntityEquipment, &model.Equipment{}, uri.ID)
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	if rows == 0 {
		resputil.NotFoundError(c, "equipment", uri.ID)
		return
	}
	recordEntity(c, mgr.recorder, model.ActionDeleted, model.EntityEquipment, uri.ID, nil)
	resputil.Success(c, "Equipment deactivated")
}
