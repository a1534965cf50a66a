package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 集成测试辅助工具
// 这些测试打真实HTTP接口，需要先启动服务和依赖(MySQL/Redis)，
// 并在数据库里种好一个管理员账号。默认跳过，显式开启：
//
//	PHARMACY_INTEGRATION=1 go test ./test/integration/...
const (
	// BaseURL API基础URL
	BaseURL = "http://localhost:8080/api/v1"
	// Timeout HTTP请求超时时间
	Timeout = 10 * time.Second
)

// SkipUnlessIntegration 未开启集成测试时跳过
func SkipUnlessIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("PHARMACY_INTEGRATION") != "1" {
		t.Skip("集成测试未开启(PHARMACY_INTEGRATION=1)")
	}
}

// Response 统一响应结构(与pkg/response一致)
type Response struct {
	OK        bool            `json:"ok"`
	Data      json.RawMessage `json:"data"`
	Error     *ErrorBody      `json:"error"`
	RequestID string          `json:"request_id"`
}

// ErrorBody 错误响应体
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// LoginData 登录响应数据
type LoginData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// doJSON 发送请求并解析统一响应
func doJSON(t *testing.T, method, url string, data interface{}, token string) *Response {
	t.Helper()

	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		require.NoError(t, err, "JSON序列化失败")
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err, "创建HTTP请求失败")

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	err = json.Unmarshal(raw, &result)
	require.NoError(t, err, "解析JSON响应失败: %s", string(raw))

	return &result
}

// PostJSON 发送POST请求
func PostJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return doJSON(t, http.MethodPost, url, data, token)
}

// PutJSON 发送PUT请求
func PutJSON(t *testing.T, url string, data interface{}, token string) *Response {
	return doJSON(t, http.MethodPut, url, data, token)
}

// GetJSON 发送GET请求
func GetJSON(t *testing.T, url string, token string) *Response {
	return doJSON(t, http.MethodGet, url, nil, token)
}

// RequireOK 断言业务成功并把data解析到out
func RequireOK(t *testing.T, resp *Response, out interface{}) {
	t.Helper()
	if !resp.OK {
		require.FailNowf(t, "请求失败", "code=%d message=%s", resp.Error.Code, resp.Error.Message)
	}
	if out != nil {
		require.NoError(t, json.Unmarshal(resp.Data, out), "解析data失败")
	}
}

// LoginAdmin 用种子管理员账号登录，返回Token
// 账号通过环境变量覆盖，默认admin@pharmacy.local/Admin1234
func LoginAdmin(t *testing.T) string {
	t.Helper()

	email := os.Getenv("PHARMACY_TEST_ADMIN_EMAIL")
	if email == "" {
		email = "admin@pharmacy.local"
	}
	password := os.Getenv("PHARMACY_TEST_ADMIN_PASSWORD")
	if password == "" {
		password = "Admin1234"
	}

	resp := PostJSON(t, BaseURL+"/users/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")

	var data LoginData
	RequireOK(t, resp, &data)
	return data.AccessToken
}

// UniqueSKU 生成唯一的测试SKU
func UniqueSKU(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano()%1_000_000_0000)
}

// UniqueLotNumber 生成唯一的测试批号
func UniqueLotNumber() string {
	return fmt.Sprintf("L%d", time.Now().UnixNano()%1_000_000_0000)
}
