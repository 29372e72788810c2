package resputil

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope of every endpoint. Data carries the row or row
// set; Msg carries the store's error message verbatim on failure.
type Response[T any] struct {
	Code ErrorCode `json:"code"`
	Data T         `json:"data"`
	Msg  string    `json:"msg"`
}

func wrapResponse(c *gin.Context, httpCode int, msg string, data interface{}, code ErrorCode) {
	c.JSON(httpCode, gin.H{
		"code": code,
		"data": data,
		"msg":  msg,
	})
}

func Success(c *gin.Context, data interface{}) {
	wrapResponse(c, http.StatusOK, "", data, OK)
}

func Error(c *gin.Context, msg string, errorCode ErrorCode) {
	wrapResponse(c, http.StatusInternalServerError, msg, nil, errorCode)
}

func HTTPError(c *gin.Context, httpCode int, msg string, errorCode ErrorCode) {
	wrapResponse(c, httpCode, msg, nil, errorCode)
}

func BadRequestError(c *gin.Context, msg string) {
	wrapResponse(c, http.StatusBadRequest, msg, nil, InvalidRequest)
}

func NotFoundError(c *gin.Context, entity string, id uint) {
	wrapResponse(c, http.StatusNotFound, fmt.Sprintf("%s %d not found", entity, id), nil, NotFound)
}
