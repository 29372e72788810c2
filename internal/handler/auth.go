package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/dsnakex/Dashboard-ELN/dao/model"
	"github.com/dsnakex/Dashboard-ELN/internal/resputil"
	"github.com/dsnakex/Dashboard-ELN/internal/util"
	"github.com/dsnakex/Dashboard-ELN/pkg/activity"
	"github.com/dsnakex/Dashboard-ELN/pkg/blob"
	"github.com/dsnakex/Dashboard-ELN/pkg/logutils"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewAuthMgr)
}

type AuthMgr struct {
	name     string
	db       *gorm.DB
	blob     blob.Store
	recorder *activity.Recorder
}

func NewAuthMgr(conf *RegisterConfig) Manager {
	return &AuthMgr{
		name:     "auth",
		db:       conf.DB,
		blob:     conf.Blob,
		recorder: conf.Recorder,
	}
}

func (mgr *AuthMgr) GetName() string { return mgr.name }

func (mgr *AuthMgr) RegisterPublic(g *gin.RouterGroup) {
	g.POST("/signup", mgr.Signup)
	g.POST("/login", mgr.Login)
	g.POST("/refresh", mgr.Refresh)
}

func (mgr *AuthMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/me", mgr.GetProfile)
	g.PUT("/me", mgr.UpdateProfile)
	g.POST("/avatar", mgr.UploadAvatar)
	g.POST("/signout", mgr.Signout)
}

func (mgr *AuthMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.GET("/users", mgr.ListUsers)
	g.PUT("/users/:id/role", mgr.UpdateUserRole)
}

type SignupReq struct {
	Username string  `json:"username" binding:"required"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	FullName *string `json:"fullName"`
}

type TokenResp struct {
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
	User         model.UserInfo `json:"user"`
}

// Signup godoc
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param req body SignupReq true "account"
// @Success 200 {object} resputil.Response[TokenResp] "token pair"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/auth/signup [post]
func (mgr *AuthMgr) Signup(c *gin.Context) {
	var req SignupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	password := string(hash)
	user := model.User{
		Name:     req.Username,
		Email:    req.Email,
		Password: &password,
		FullName: req.FullName,
		Role:     model.RoleResearcher,
		Status:   "active",
	}
	if err := mgr.db.WithContext(c).Create(&user).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	mgr.recordUser(c, user.ID, model.ActionCreated)
	mgr.respondWithTokens(c, &user)
}

type LoginReq struct {
	Username string `json:"username" binding:"required"` // name or email
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary Exchange credentials for a token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param req body LoginReq true "credentials"
// @Success 200 {object} resputil.Response[TokenResp] "token pair"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/auth/login [post]
func (mgr *AuthMgr) Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var user model.User
	err := mgr.db.WithContext(c).
		Where("name = ? OR email = ?", req.Username, req.Username).
		First(&user).Error
	if err != nil {
		resputil.HTTPError(c, http.StatusUnauthorized, "Invalid credentials", resputil.InvalidCredentials)
		return
	}
	if user.Password == nil ||
		bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(req.Password)) != nil {
		resputil.HTTPError(c, http.StatusUnauthorized, "Invalid credentials", resputil.InvalidCredentials)
		return
	}

	mgr.respondWithTokens(c, &user)
}

type RefreshReq struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Refresh godoc
// @Summary Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param req body RefreshReq true "refresh token"
// @Success 200 {object} resputil.Response[TokenResp] "token pair"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/auth/refresh [post]
func (mgr *AuthMgr) Refresh(c *gin.Context) {
	var req RefreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	msg, err := util.GetTokenMgr().CheckToken(req.RefreshToken)
	if err != nil {
		resputil.HTTPError(c, http.StatusUnauthorized, err.Error(), resputil.TokenInvalid)
		return
	}
	var user model.User
	if err := mgr.db.WithContext(c).First(&user, msg.UserID).Error; err != nil {
		resputil.HTTPError(c, http.StatusUnauthorized, "User not found", resputil.TokenInvalid)
		return
	}

	mgr.respondWithTokens(c, &user)
}

func (mgr *AuthMgr) respondWithTokens(c *gin.Context, user *model.User) {
	msg := util.JWTMessage{UserID: user.ID, Username: user.Name, Role: user.Role}
	access, refresh, err := util.GetTokenMgr().CreateTokens(&msg)
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, TokenResp{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user.Info(),
	})
}

type ProfileResp struct {
	model.UserInfo
	AvatarURL *string    `json:"avatarUrl,omitempty"`
	Role      model.Role `json:"role"`
	CreatedAt time.Time  `json:"createdAt"`
}

// GetProfile godoc
// @Summary Current user profile
// @Tags auth
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[ProfileResp] "profile"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/auth/me [get]
func (mgr *AuthMgr) GetProfile(c *gin.Context) {
	token := util.GetToken(c)
	var user model.User
	if err := mgr.db.WithContext(c).First(&user, token.UserID).Error; err != nil {
		resputil.NotFoundError(c, "user", token.UserID)
		return
	}
	resputil.Success(c, ProfileResp{
		UserInfo:  user.Info(),
		AvatarURL: user.AvatarURL,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	})
}

type UpdateProfileReq struct {
	FullName *string `json:"fullName"`
	Email    *string `json:"email" binding:"omitempty,email"`
}

// UpdateProfile godoc
// @Summary Update the current user profile
// @Tags auth
// @Accept json
// @Produce json
// @Security Bearer
// @Param req body UpdateProfileReq true "profile fields"
// @Success 200 {object} resputil.Response[ProfileResp] "profile"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/auth/me [put]
func (mgr *AuthMgr) UpdateProfile(c *gin.Context) {
	token := util.GetToken(c)
	var req UpdateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var user model.User
	if err := mgr.db.WithContext(c).First(&user, token.UserID).Error; err != nil {
		resputil.NotFoundError(c, "user", token.UserID)
		return
	}
	updates := map[string]any{}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if len(updates) > 0 {
		if err := mgr.db.WithContext(c).Model(&user).Updates(updates).Error; err != nil {
			resputil.Error(c, err.Error(), resputil.NotSpecified)
			return
		}
		mgr.recordUser(c, user.ID, model.ActionUpdated)
	}
	resputil.Success(c, ProfileResp{
		UserInfo:  user.Info(),
		AvatarURL: user.AvatarURL,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	})
}

// UploadAvatar godoc
// @Summary Upload the current user's avatar
// @Description Two sequential writes: blob upload then record update. If
// @Description the record update fails the blob is deleted best effort.
// @Tags auth
// @Accept mpfd
// @Produce json
// @Security Bearer
// @Param file formData file true "avatar image"
// @Success 200 {object} resputil.Response[any] "avatar URL"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/auth/avatar [post]
func (mgr *AuthMgr) UploadAvatar(c *gin.Context) {
	token := util.GetToken(c)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	defer src.Close()

	key := fmt.Sprintf("avatars/%d/%s%s", token.UserID, uuid.NewString(), filepath.Ext(fileHeader.Filename))
	info, err := mgr.blob.Put(c, key, src, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	err = mgr.db.WithContext(c).Model(&model.User{}).
		Where("id = ?", token.UserID).
		Update("avatar_url", info.URL).Error
	if err != nil {
		// compensate for the orphaned blob
		if delErr := mgr.blob.Delete(c, key); delErr != nil {
			logutils.Log.Warnf("avatar: compensating delete of %s: %v", key, delErr)
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	mgr.recordUser(c, token.UserID, model.ActionUpdated)
	resputil.Success(c, gin.H{"avatarUrl": info.URL})
}

// Signout godoc
// @Summary Invalidate the session client side and leave an audit row
// @Tags auth
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[string] "ok"
// @Router /v1/auth/signout [post]
func (mgr *AuthMgr) Signout(c *gin.Context) {
	// Tokens are stateless; the client drops them. The endpoint exists
	// for the audit trail.
	token := util.GetToken(c)
	mgr.recordUser(c, token.UserID, model.ActionUpdated)
	resputil.Success(c, "Signed out")
}

// ListUsers godoc
// @Summary List all users
// @Tags auth
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[any] "users"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/admin/auth/users [get]
func (mgr *AuthMgr) ListUsers(c *gin.Context) {
	var users []model.User
	if err := mgr.db.WithContext(c).Order("name").Find(&users).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	result := make([]ProfileResp, 0, len(users))
	for i := range users {
		result = append(result, ProfileResp{
			UserInfo:  users[i].Info(),
			AvatarURL: users[i].AvatarURL,
			Role:      users[i].Role,
			CreatedAt: users[i].CreatedAt,
		})
	}
	resputil.Success(c, result)
}

type UpdateRoleReq struct {
	Role model.Role `json:"role" binding:"required,oneof=admin researcher viewer"`
}

// UpdateUserRole godoc
// @Summary Change a user's platform role
// @Tags auth
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "user id"
// @Param req body UpdateRoleReq true "role"
// @Success 200 {object} resputil.Response[string] "ok"
// @Failure 400 {object} resputil.Response[any] "Request parameter error"
// @Failure 500 {object} resputil.Response[any] "Other errors"
// @Router /v1/admin/auth/users/{id}/role [put]
func (mgr *AuthMgr) UpdateUserRole(c *gin.Context) {
	var uri IDReq
	if err := c.ShouldBindUri(&uri); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var req UpdateRoleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	result := mgr.db.WithContext(c).Model(&model.User{}).
		Where("id = ?", uri.ID).
		Update("role", req.Role)
	if result.Error != nil {
		resputil.Error(c, result.Error.Error(), resputil.NotSpecified)
		return
	}
	if result.RowsAffected == 0 {
		resputil.NotFoundError(c, "user", uri.ID)
		return
	}
	mgr.recordUser(c, uri.ID, model.ActionUpdated)
	resputil.Success(c, "Role updated")
}

func (mgr *AuthMgr) recordUser(c *gin.Context, userID uint, action model.ActivityAction) {
	actor := util.GetToken(c).UserID
	ev := activity.Event{
		Action:     action,
		EntityType: model.EntityUser,
		EntityID:   &userID,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	}
	if actor != 0 {
		ev.UserID = &actor
	}
	mgr.recorder.Record(ev)
}
