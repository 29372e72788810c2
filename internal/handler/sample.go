package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dsnakex/Dashboard-ELN/dao/model"
	"github.com/dsnakex/Dashboard-ELN/internal/resputil"
	"github.com/dsnakex/Dashboard-ELN/internal/util"
	"github.com/dsnakex/Dashboard-ELN/pkg/activity"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewSampleMgr)
}

type SampleMgr struct {
	name     string
	db       *gorm.DB
	recorder *activity.Recorder
}

func NewSampleMgr(conf *RegisterConfig) Manager {
	return &SampleMgr{name: "samples", db: conf.DB, recorder: conf.Recorder}
}

func (mgr *SampleMgr) GetName() string { return mgr.name }

func (mgr *SampleMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *SampleMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/list", mgr.List)
	g.GET("/:id", mgr.Get)
	g.POST("/create", mgr.Create)
	g.PUT("/update/:id", mgr.Update)
	g.DELETE("/delete/:id", mgr.Delete)
}

func (mgr *SampleMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type ListSampleReq struct {
	PageReq
	DateRangeReq
	SampleType    *string             `form:"sampleType"`
	Status        *model.SampleStatus `form:"status" binding:"omitempty,oneof=available in_use depleted expired disposed"`
	StorageUnitID *uint               `form:"storageUnitId"`
	ExpiringDays  *int                `form:"expiringDays" binding:"omitempty,min=1"`
	Search        string              `form:"search"`
}

// List godoc
// @Summary List active samples with filters and pagination
// @Tags sample
// @Produce json
// @Security Bearer
// @Param sampleType query string false "sample type"
// @Param status query string false "inventory status"
// @Param storageUnitId query int false "storage unit"
// @Param expiringDays query int false "only samples expiring within N days"
// @Param search query string false "match name, barcode or catalog number"
// @Success 200 {object} resputil.Response[ListResp[model.Sample]] "samples"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/samples/list [get]
func (mgr *SampleMgr) List(c *gin.Context) {
	var req ListSampleReq
	if err := c.ShouldBindQuery(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	q := mgr.db.WithContext(c).Model(&model.Sample{}).Where("is_active = ?", true)
	if req.SampleType != nil {
		q = q.Where("sample_type = ?", *req.SampleType)
	}
	if req.Status != nil {
		q = q.Where("status = ?", *req.Status)
	}
	if req.StorageUnitID != nil {
		q = q.Where("storage_unit_id = ?", *req.StorageUnitID)
	}
	if req.ExpiringDays != nil {
		now := time.Now()
		q = q.Where("expiration_date IS NOT NULL AND expiration_date BETWEEN ? AND ?",
			now, now.AddDate(0, 0, *req.ExpiringDays))
	}
	q = applySearch(q, req.Search, "name", "barcode", "catalog_number")
	q = applyDateRange(q, req.DateRangeReq)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	var samples []model.Sample
	err := q.Preload("StorageUnit").Order("created_at DESC").
		Offset(req.Offset()).Limit(req.PageSize).
		Find(&samples).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, ListResp[model.Sample]{Rows: samples, Total: total})
}

// Get godoc
// @Summary Fetch one sample with its storage unit
// @Tags sample
// @Produce json
// @Security Bearer
// @Param id path int true "sample id"
// @Success 200 {object} resputil.Response[model.Sample] "sample"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/samples/{id} [get]
func (mgr *SampleMgr) Get(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var sample model.Sample
	err := mgr.db.WithContext(c).Preload("StorageUnit").First(&sample, uri.ID).Error
	if err != nil {
		if isNotFound(err) {
			resputil.NotFoundError(c, "sample", uri.ID)
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, sample)
}

type CreateSampleReq struct {
	Name              string              `json:"name" binding:"required"`
	SampleType        string              `json:"sampleType" binding:"required"`
	Description       *string             `json:"description"`
	Status            *model.SampleStatus `json:"status" binding:"omitempty,oneof=available in_use depleted expired disposed"`
	Quantity          *float64            `json:"quantity"`
	Unit              *string             `json:"unit"`
	Concentration     *float64            `json:"concentration"`
	ConcentrationUnit *string             `json:"concentrationUnit"`
	StorageUnitID     *uint               `json:"storageUnitId"`
	Position          *string             `json:"position"`
	ReceivedDate      *time.Time          `json:"receivedDate"`
	ExpirationDate    *time.Time          `json:"expirationDate"`
	Supplier          *string             `json:"supplier"`
	CatalogNumber     *string             `json:"catalogNumber"`
	LotNumber         *string             `json:"lotNumber"`
	Barcode           *string             `json:"barcode"`
	CustomFields      datatypes.JSON      `json:"customFields"`
}

// Create godoc
// @Summary Register a sample in the inventory
// @Tags sample
// @Accept json
// @Produce json
// @Security Bearer
// @Param req body CreateSampleReq true "sample"
// @Success 200 {object} resputil.Response[model.Sample] "created sample"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/samples/create [post]
func (mgr *SampleMgr) Create(c *gin.Context) {
	var req CreateSampleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	if req.StorageUnitID != nil {
		var unit model.StorageUnit
		if err := mgr.db.WithContext(c).First(&unit, *req.StorageUnitID).Error; err != nil {
			if isNotFound(err) {
				resputil.NotFoundError(c, "storage unit", *req.StorageUnitID)
				return
			}
			resputil.Error(c, err.Error(), resputil.NotSpecified)
			return
		}
	}

	token := util.GetToken(c)
	sample := model.Sample{
		Name:              req.Name,
		SampleType:        req.SampleType,
		Description:       req.Description,
		Status:            model.SampleAvailable,
		Quantity:          req.Quantity,
		Unit:              req.Unit,
		Concentration:     req.Concentration,
		ConcentrationUnit: req.ConcentrationUnit,
		StorageUnitID:     req.StorageUnitID,
		Position:          req.Position,
		ReceivedDate:      req.ReceivedDate,
		ExpirationDate:    req.ExpirationDate,
		Supplier:          req.Supplier,
		CatalogNumber:     req.CatalogNumber,
		LotNumber:         req.LotNumber,
		Barcode:           req.Barcode,
		CustomFields:      req.CustomFields,
		IsActive:          true,
		CreatedBy:         &token.UserID,
	}
	if req.Status != nil {
		sample.Status = *req.Status
	}
	if err := mgr.db.WithContext(c).Create(&sample).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	recordEntity(c, mgr.recorder, model.ActionCreated, model.EntitySample, sample.ID, nil)
	resputil.Success(c, sample)
}

type UpdateSampleReq struct {
	Name              *string             `json:"name"`
	SampleType        *string             `json:"sampleType"`
	Description       *string             `json:"description"`
	Status            *model.SampleStatus `json:"status" binding:"omitempty,oneof=available in_use depleted expired disposed"`
	Quantity          *float64            `json:"quantity"`
	Unit              *string             `json:"unit"`
	Concentration     *float64            `json:"concentration"`
	ConcentrationUnit *string             `json:"concentrationUnit"`
	StorageUnitID     *uint               `json:"storageUnitId"`
	Position          *string             `json:"position"`
	ReceivedDate      *time.Time          `json:"receivedDate"`
	ExpirationDate    *time.Time          `json:"expirationDate"`
	Supplier          *string             `json:"supplier"`
	CatalogNumber     *string             `json:"catalogNumber"`
	LotNumber         *string             `json:"lotNumber"`
	Barcode           *string             `json:"barcode"`
	CustomFields      datatypes.JSON      `json:"customFields"`
}

// Update godoc
// @Summary Update sample fields
// @Tags sample
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "sample id"
// @Param req body UpdateSampleReq true "fields to change"
// @Success 200 {object} resputil.Response[model.Sample] "updated sample"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/samples/update/{id} [put]
func (mgr *SampleMgr) Update(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var req UpdateSampleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var sample model.Sample
	if err := mgr.db.WithContext(c).First(&sample, uri.ID).Error; err != nil {
		if isNotFound(err) {
			resputil.NotFoundError(c, "sample", uri.ID)
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	before := sample.Status
	updates := map[string]any{}
	setStr := func(col string, v *string, dst **string) {
		if v != nil {
			updates[col] = *v
			*dst = v
		}
	}
	if req.Name != nil {
		updates["name"] = *req.Name
		sample.Name = *req.Name
	}
	if req.SampleType != nil {
		updates["sample_type"] = *req.SampleType
		sample.SampleType = *req.SampleType
	}
	setStr("description", req.Description, &sample.Description)
	if req.Status != nil {
		updates["status"] = *req.Status
		sample.Status = *req.Status
	}
	if req.Quantity != nil {
		updates["quantity"] = *req.Quantity
		sample.Quantity = req.Quantity
	}
	setStr("unit", req.Unit, &sample.Unit)
	if req.Concentration != nil {
		updates["concentration"] = *req.Concentration
		sample.Concentration = req.Concentration
	}
	setStr("concentration_unit", req.ConcentrationUnit, &sample.ConcentrationUnit)
	if req.StorageUnitID != nil {
		updates["storage_unit_id"] = *req.StorageUnitID
		sample.StorageUnitID = req.StorageUnitID
	}
	setStr("position", req.Position, &sample.Position)
	if req.ReceivedDate != nil {
		updates["received_date"] = *req.ReceivedDate
		sample.ReceivedDate = req.ReceivedDate
	}
	if req.ExpirationDate != nil {
		updates["expiration_date"] = *req.ExpirationDate
		sample.ExpirationDate = req.ExpirationDate
	}
	setStr("supplier", req.Supplier, &sample.Supplier)
	setStr("catalog_number", req.CatalogNumber, &sample.CatalogNumber)
	setStr("lot_number", req.LotNumber, &sample.LotNumber)
	setStr("barcode", req.Barcode, &sample.Barcode)
	if len(req.CustomFields) > 0 {
		updates["custom_fields"] = req.CustomFields
		sample.CustomFields = req.CustomFields
	}

	if len(updates) > 0 {
		if err := mgr.db.WithContext(c).Model(&sample).Updates(updates).Error; err != nil {
			resputil.Error(c, err.Error(), resputil.NotSpecified)
			return
		}
		changes := activity.Diff(
			map[string]any{"status": before},
			map[string]any{"status": sample.Status},
		)
		recordEntity(c, mgr.recorder, model.ActionUpdated, model.EntitySample, sample.ID, changes)
	}
	resputil.Success(c, sample)
}

// Delete godoc
// @Summary Deactivate a sample
// @Tags sample
// @Produce json
// @Security Bearer
// @Param id path int true "sample id"
// @Success 200 {object} resputil.Response[string] "ok"
// @Failure 404 {object} resputil.Response[any] "Not found"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/samples/delete/{id} [delete]
func (mgr *SampleMgr) Delete(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	rows, err := deactivate(mgr.db.WithContext(c), model.EntitySample, &model.Sample{}, uri.ID)
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	if rows == 0 {
		resputil.NotFoundError(c, "sample", uri.ID)
		return
	}
	recordEntity(c, mgr.recorder, model.ActionDeleted, model.EntitySample, uri.ID, nil)
	resputil.Success(c, "Sample deactivated")
}
