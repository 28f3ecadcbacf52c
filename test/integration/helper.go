package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sync"
	"testing"
	"time"
)

// 集成测试辅助函数
//
// 集成测试需要真实的服务端环境（MySQL + Redis + API服务）：
//   启动MySQL和Redis后运行 go run ./cmd/api
//   go test -v ./test/integration/...
//
// 服务未启动时自动跳过，不影响单元测试的执行。

const (
	// BaseURL API服务地址
	BaseURL = "http://localhost:8080/api/v1"

	// PingURL 健康检查地址，用于判断服务是否可用
	PingURL = "http://localhost:8080/ping"
)

var (
	serverCheckOnce sync.Once
	serverAvailable bool
)

// RequireServer 检查API服务是否可达，不可达时跳过当前测试
func RequireServer(t *testing.T) {
	t.Helper()
	serverCheckOnce.Do(func() {
		client := &http.Client{Timeout: 2 * time.Second}
		resp, err := client.Get(PingURL)
		if err == nil {
			resp.Body.Close()
			serverAvailable = resp.StatusCode == http.StatusOK
		}
	})
	if !serverAvailable {
		t.Skipf("API服务不可达（%s），跳过集成测试", PingURL)
	}
}

// Response 统一响应结构
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// RegisterData 注册响应数据
type RegisterData struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

// LoginData 登录响应数据
type LoginData struct {
	Token string `json:"token"`
	User  struct {
		ID       uint   `json:"id"`
		Email    string `json:"email"`
		Nickname string `json:"nickname"`
		IsAdmin  bool   `json:"is_admin"`
	} `json:"user"`
}

// BookData 图书响应数据
type BookData struct {
	ID         uint   `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	ISBN       string `json:"isbn"`
	Price      int64  `json:"price"`
	Stock      int    `json:"stock"`
	Genre      string `json:"genre"`
	IsUpcoming bool   `json:"is_upcoming"`
}

// OrderData 下单响应数据
type OrderData struct {
	OrderID       uint   `json:"order_id"`
	OrderNo       string `json:"order_no"`
	ItemsPrice    int64  `json:"items_price"`
	ShippingPrice int64  `json:"shipping_price"`
	TaxPrice      int64  `json:"tax_price"`
	TotalPrice    int64  `json:"total_price"`
	TotalYuan     string `json:"total_yuan"`
}

// OrderDetailData 订单详情响应数据
type OrderDetailData struct {
	ID         uint   `json:"id"`
	OrderNo    string `json:"order_no"`
	UserID     uint   `json:"user_id"`
	TotalPrice int64  `json:"total_price"`
	Paid       bool   `json:"paid"`
	Delivered  bool   `json:"delivered"`
	TrackingNo string `json:"tracking_no"`
	Items      []struct {
		BookID   uint   `json:"book_id"`
		Title    string `json:"title"`
		Price    int64  `json:"price"`
		Quantity int    `json:"quantity"`
		Subtotal int64  `json:"subtotal"`
	} `json:"items"`
}

func doJSON(t *testing.T, method, url string, body interface{}, token string) *Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("序列化请求失败: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("创建请求失败: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("请求失败 %s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("读取响应失败: %v", err)
	}

	var result Response
	if err := json.Unmarshal(respBody, &result); err != nil {
		t.Fatalf("解析响应失败: %v, body: %s", err, string(respBody))
	}
	return &result
}

// PostJSON 发送POST请求
func PostJSON(t *testing.T, url string, body interface{}, token string) *Response {
	t.Helper()
	return doJSON(t, http.MethodPost, url, body, token)
}

// PutJSON 发送PUT请求
func PutJSON(t *testing.T, url string, body interface{}, token string) *Response {
	t.Helper()
	return doJSON(t, http.MethodPut, url, body, token)
}

// DeleteJSON 发送DELETE请求
func DeleteJSON(t *testing.T, url string, token string) *Response {
	t.Helper()
	return doJSON(t, http.MethodDelete, url, nil, token)
}

// GetJSON 发送GET请求
func GetJSON(t *testing.T, url string, token string) *Response {
	t.Helper()
	return doJSON(t, http.MethodGet, url, nil, token)
}

// GenerateTestEmail 生成不重复的测试邮箱
func GenerateTestEmail(prefix string) string {
	return fmt.Sprintf("%s_%d_%d@test.com", prefix, time.Now().UnixNano(), rand.Intn(10000))
}

// GenerateTestISBN 生成不重复的测试ISBN
func GenerateTestISBN() string {
	return fmt.Sprintf("978%010d", time.Now().UnixNano()%10000000000)
}

// RegisterTestUser 注册并登录一个测试用户，返回 (token, userID)
func RegisterTestUser(t *testing.T, nickname string) (string, uint) {
	t.Helper()

	email := GenerateTestEmail(nickname)
	password := "Test1234"

	resp := PostJSON(t, BaseURL+"/users/register", map[string]string{
		"email":    email,
		"password": password,
		"nickname": nickname,
	}, "")
	if resp.Code != 0 {
		t.Fatalf("注册测试用户失败: %s", resp.Message)
	}

	loginResp := PostJSON(t, BaseURL+"/users/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	if loginResp.Code != 0 {
		t.Fatalf("登录测试用户失败: %s", loginResp.Message)
	}

	var data LoginData
	if err := json.Unmarshal(loginResp.Data, &data); err != nil {
		t.Fatalf("解析登录响应失败: %v", err)
	}
	return data.Token, data.User.ID
}

// PublishTestBook 上架一本测试图书，返回图书ID
func PublishTestBook(t *testing.T, token, title string, price int64, stock int) uint {
	t.Helper()

	resp := PostJSON(t, BaseURL+"/books", map[string]interface{}{
		"title":       title,
		"author":      "测试作者",
		"publisher":   "测试出版社",
		"isbn":        GenerateTestISBN(),
		"price":       price,
		"stock":       stock,
		"description": "集成测试用图书",
		"genre":       "技术",
	}, token)
	if resp.Code != 0 {
		t.Fatalf("上架测试图书失败: %s", resp.Message)
	}

	var data BookData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("解析图书响应失败: %v", err)
	}
	return data.ID
}

// DefaultShippingAddress 集成测试通用收货地址
func DefaultShippingAddress() map[string]string {
	return map[string]string{
		"address":     "中关村大街1号",
		"city":        "北京",
		"postal_code": "100080",
		"country":     "中国",
	}
}

// CreateTestOrder 创建一个测试订单，返回下单响应数据
func CreateTestOrder(t *testing.T, token string, items []map[string]interface{}) *OrderData {
	t.Helper()

	resp := PostJSON(t, BaseURL+"/orders", map[string]interface{}{
		"items":          items,
		"shipping":       DefaultShippingAddress(),
		"payment_method": "alipay",
	}, token)
	if resp.Code != 0 {
		t.Fatalf("创建测试订单失败: %s", resp.Message)
	}

	var data OrderData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("解析订单响应失败: %v", err)
	}
	return &data
}
