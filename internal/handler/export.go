package handler

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dsnakex/Dashboard-ELN/dao/model"
	"github.com/dsnakex/Dashboard-ELN/internal/resputil"
	"github.com/dsnakex/Dashboard-ELN/pkg/export"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewExportMgr)
}

type ExportMgr struct {
	name string
	db   *gorm.DB
}

func NewExportMgr(conf *RegisterConfig) Manager {
	return &ExportMgr{name: "export", db: conf.DB}
}

func (mgr *ExportMgr) GetName() string { return mgr.name }

func (mgr *ExportMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *ExportMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/experiments", mgr.Experiments)
	g.GET("/samples", mgr.Samples)
	g.GET("/equipment", mgr.Equipment)
}

func (mgr *ExportMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type exportFormatReq struct {
	Format string `form:"format,default=xlsx" binding:"oneof=xlsx pdf"`
}

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	pdfContentType  = "application/pdf"
)

func (mgr *ExportMgr) serve(c *gin.Context, entity string, doc export.Document) {
	var req exportFormatReq
	if err := c.ShouldBindQuery(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	now := time.Now()
	var (
		payload     []byte
		contentType string
		err         error
	)
	switch req.Format {
	case "pdf":
		payload, err = export.WritePDF(doc, now)
		contentType = pdfContentType
	default:
		payload, err = export.WriteXLSX(doc)
		contentType = xlsxContentType
	}
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	filename := export.Filename(entity, req.Format, now)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(200, contentType, payload)
}

// Experiments godoc
// @Summary Download all experiments as a spreadsheet or PDF
// @Tags export
// @Produce octet-stream
// @Security Bearer
// @Param format query string false "xlsx or pdf, default xlsx"
// @Success 200 {file} binary "document"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/export/experiments [get]
func (mgr *ExportMgr) Experiments(c *gin.Context) {
	var experiments []model.Experiment
	err := mgr.db.WithContext(c).
		Preload("Study").Preload("Study.Project").
		Order("created_at DESC").
		Find(&experiments).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	doc := export.Document{
		Title:   "Experiments",
		Sheet:   "Experiments",
		Headers: []string{"ID", "Name", "Study", "Project", "Status", "Created", "Signed"},
	}
	for i := range experiments {
		e := &experiments[i]
		signed := ""
		if e.SignedAt != nil {
			signed = e.SignedAt.Format("2006-01-02")
		}
		doc.Rows = append(doc.Rows, []string{
			strconv.FormatUint(uint64(e.ID), 10),
			e.Name,
			e.Study.Name,
			e.Study.Project.Name,
			string(e.Status),
			e.CreatedAt.Format("2006-01-02"),
			signed,
		})
	}
	mgr.serve(c, "experiments", doc)
}

// Samples godoc
// @Summary Download the active sample inventory
// @Tags export
// @Produce octet-stream
// @Security Bearer
// @Param format query string false "xlsx or pdf, default xlsx"
// @Success 200 {file} binary "document"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/export/samples [get]
func (mgr *ExportMgr) Samples(c *gin.Context) {
	var samples []model.Sample
	err := mgr.db.WithContext(c).
		Preload("StorageUnit").
		Where("is_active = ?", true).
		Order("name").
		Find(&samples).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	doc := export.Document{
		Title:   "Sample Inventory",
		Sheet:   "Samples",
		Headers: []string{"ID", "Name", "Type", "Status", "Quantity", "Storage", "Expiration"},
	}
	for i := range samples {
		s := &samples[i]
		quantity := ""
		if s.Quantity != nil {
			quantity = strconv.FormatFloat(*s.Quantity, 'f', -1, 64)
			if s.Unit != nil {
				quantity += " " + *s.Unit
			}
		}
		storage := ""
		if s.StorageUnit != nil {
			storage = s.StorageUnit.Name
		}
		expiration := ""
		if s.ExpirationDate != nil {
			expiration = s.ExpirationDate.Format("2006-01-02")
		}
		doc.Rows = append(doc.Rows, []string{
			strconv.FormatUint(uint64(s.ID), 10),
			s.Name,
			s.SampleType,
			string(s.Status),
			quantity,
			storage,
			expiration,
		})
	}
	mgr.serve(c, "samples", doc)
}

// Equipment godoc
// @Summary Download the active equipment inventory
// @Tags export
// @Produce octet-stream
// @Security Bearer
// @Param format query string false "xlsx or pdf, default xlsx"
// @Success 200 {file} binary "document"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/export/equipment [get]
func (mgr *ExportMgr) Equipment(c *gin.Context) {
	var equipment []model.Equipment
	err := mgr.db.WithContext(c).
		Where("is_active = ?", true).
		Order("name").
		Find(&equipment).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	doc := export.Document{
		Title:   "Equipment Inventory",
		Sheet:   "Equipment",
		Headers: []string{"ID", "Name", "Type", "Manufacturer", "Status", "Next Maintenance"},
	}
	for i := range equipment {
		e := &equipment[i]
		typ := ""
		if e.EquipmentType != nil {
			typ = *e.EquipmentType
		}
		manufacturer := ""
		if e.Manufacturer != nil {
			manufacturer = *e.Manufacturer
		}
		next := ""
		if e.NextMaintenanceDate != nil {
			next = e.NextMaintenanceDate.Format("2006-01-02")
		}
		doc.Rows = append(doc.Rows, []string{
			strconv.FormatUint(uint64(e.ID), 10),
			e.Name,
			typ,
			manufacturer,
			string(e.Status),
			next,
		})
	}
	mgr.serve(c, "equipment", doc)
}
