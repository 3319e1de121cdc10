package err

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

const (
	CodeOK       = 0
	CodeInternal = 1000
	CodeNotFound = 1001
	CodeBadParam = 1002
)

var codeMessage = map[int]string{
	CodeOK:       "ok",
	CodeInternal: "internal_error",
	CodeNotFound: "not_found",
	CodeBadParam: "bad_parameter",
}

// JSON 写入统一的响应格式
func JSON(c *gin.Context, code int, data interface{}) {
	c.JSON(httpStatusFromCode(code), Response{
		Code:    code,
		Message: codeMessage[code],
		Data:    data,
	})
}

// Msg 同 JSON，但带自定义 message（校验错误提示用）
func Msg(c *gin.Context, code int, msg string) {
	c.JSON(httpStatusFromCode(code), Response{Code: code, Message: msg})
}

func httpStatusFromCode(code int) int {
	switch code {
	case CodeOK:
		return http.StatusOK
	case CodeBadParam:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
