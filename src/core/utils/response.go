package utils

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// DataResponse 配置类接口响应结构体（code/message/data）
type DataResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// LegacyResponse 兼容旧版聊天机器人API的响应结构体（code/message/response）
type LegacyResponse struct {
	Code     int         `json:"code"`
	Message  string      `json:"message"`
	Response interface{} `json:"response"`
}

// DataSuccess 返回成功响应（data风格，code固定为0）
func DataSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, DataResponse{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// DataError 返回错误响应（data风格）
func DataError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, DataResponse{
		Code:    statusCode,
		Message: message,
		Data:    nil,
	})
}

// LegacySuccess 返回成功响应（旧版风格，code为200）
func LegacySuccess(c *gin.Context, response interface{}) {
	c.JSON(http.StatusOK, LegacyResponse{
		Code:     http.StatusOK,
		Message:  "success",
		Response: response,
	})
}

// LegacyError 返回错误响应（旧版风格，code与HTTP状态码一致）
func LegacyError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, LegacyResponse{
		Code:     statusCode,
		Message:  message,
		Response: nil,
	})
}

// SpeechResponse 语音类接口响应结构体，code为字符串以兼容旧版Python API
type SpeechResponse struct {
	Code     string      `json:"code"`
	Message  string      `json:"message"`
	Response interface{} `json:"response"`
}

// SpeechSuccess 返回语音接口成功响应
func SpeechSuccess(c *gin.Context, response interface{}) {
	c.JSON(http.StatusOK, SpeechResponse{
		Code:     "200",
		Message:  "success",
		Response: response,
	})
}

// SpeechError 返回语音接口错误响应
func SpeechError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, SpeechResponse{
		Code:     strconv.Itoa(statusCode),
		Message:  message,
		Response: nil,
	})
}
