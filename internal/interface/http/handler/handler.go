package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/librarium/lending/internal/interface/http/dto"
	"github.com/librarium/lending/pkg/response"
)

// bindJSON 绑定请求体，失败时写入422响应并返回false
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Fail(c, http.StatusUnprocessableEntity, dto.ValidationMessages(err)...)
		return false
	}
	return true
}

// pathID 解析路径中的数字ID，非法值返回false
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
