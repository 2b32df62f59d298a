package importer

import (
	"errors"
	"strings"

	"github.com/duksosleepy/restate-server/internal/fileio"
	"github.com/duksosleepy/restate-server/internal/store"
	"github.com/duksosleepy/restate-server/internal/utils"
)

// CRM wire shape. Field names follow the CRM's Vietnamese API.
type Master struct {
	NgayCT       string `json:"ngayCT"`
	MaCT         string `json:"maCT"`
	SoCT         string `json:"soCT"`
	MaBoPhan     string `json:"maBoPhan"`
	MaDonHang    string `json:"maDonHang"`
	TenKhachHang string `json:"tenKhachHang"`
	SoDienThoai  string `json:"soDienThoai"`
	TinhThanh    string `json:"tinhThanh"`
	QuanHuyen    string `json:"quanHuyen"`
	PhuongXa     string `json:"phuongXa"`
	DiaChi       string `json:"diaChi"`
}

type Detail struct {
	MaHang   string  `json:"maHang"`
	TenHang  string  `json:"tenHang"`
	IMEI     string  `json:"imei"`
	SoLuong  float64 `json:"soLuong"`
	DoanhThu float64 `json:"doanhThu"`
}

type OrderData struct {
	Master Master   `json:"master"`
	Detail []Detail `json:"detail"`
}

type Payload struct {
	APIKey string      `json:"apikey"`
	Data   []OrderData `json:"data"`
}

// Task is one order submission queued for the dispatcher. ID is the order id
// (maDonHang); Attempt counts prior failed submissions.
type Task struct {
	ID      string
	URL     string
	Payload Payload
	Attempt int
}

var ErrMissingOrderID = errors.New("maDonHang is required for task identification")

// TaskID extracts the order id from a payload.
func TaskID(p Payload) (string, error) {
	if len(p.Data) == 0 || p.Data[0].Master.MaDonHang == "" {
		return "", ErrMissingOrderID
	}
	return p.Data[0].Master.MaDonHang, nil
}

// SourceType derives the sales channel from the order id format: document-style
// ids with "/" come from offline POS, plain ids from the web shop.
func SourceType(orderID string) string {
	if strings.Contains(orderID, "/") {
		return "offline"
	}
	return "online"
}

// FailedOrder flattens a task into the store's record shape.
func FailedOrder(t *Task, errorCode string) store.FailedOrder {
	var m Master
	var d Detail
	if len(t.Payload.Data) > 0 {
		m = t.Payload.Data[0].Master
		if len(t.Payload.Data[0].Detail) > 0 {
			d = t.Payload.Data[0].Detail[0]
		}
	}
	return store.FailedOrder{
		OrderID:        t.ID,
		CustomerName:   m.TenKhachHang,
		PhoneNumber:    m.SoDienThoai,
		DocumentType:   m.MaCT,
		DocumentNumber: m.SoCT,
		DepartmentCode: m.MaBoPhan,
		OrderDate:      m.NgayCT,
		Province:       m.TinhThanh,
		District:       m.QuanHuyen,
		Ward:           m.PhuongXa,
		Address:        m.DiaChi,
		ProductCode:    d.MaHang,
		ProductName:    d.TenHang,
		IMEI:           d.IMEI,
		Quantity:       d.SoLuong,
		Revenue:        d.DoanhThu,
		SourceType:     SourceType(t.ID),
		ErrorCode:      errorCode,
	}
}

// ProductCode returns the first detail line's product code, "" when absent.
func (t *Task) ProductCode() string {
	if len(t.Payload.Data) > 0 && len(t.Payload.Data[0].Detail) > 0 {
		return t.Payload.Data[0].Detail[0].MaHang
	}
	return ""
}

// Spreadsheet headers understood by PayloadsFromTable.
const (
	colOrderID    = "Mã đơn hàng"
	colOrderDate  = "Ngày CT"
	colDocType    = "Mã CT"
	colDocNumber  = "Số CT"
	colDepartment = "Mã bộ phận"
	colCustomer   = "Tên khách hàng"
	colPhone      = "Số điện thoại"
	colProvince   = "Tỉnh thành"
	colDistrict   = "Quận huyện"
	colWard       = "Phường xã"
	colAddress    = "Địa chỉ"
	colProduct    = "Mã hàng"
	colProdName   = "Tên hàng"
	colIMEI       = "IMEI"
	colQuantity   = "Số lượng"
	colRevenue    = "Doanh thu"
)

// PayloadsFromTable builds one single-detail payload per spreadsheet row.
// Rows without an order id are skipped; the count of skipped rows is returned.
func PayloadsFromTable(t *fileio.Table, apiKey string) ([]Payload, int) {
	var out []Payload
	skipped := 0
	for _, row := range t.Rows {
		orderID := strings.TrimSpace(row[colOrderID])
		if orderID == "" {
			skipped++
			continue
		}
		qty, _ := utils.ParseNumber(row[colQuantity])
		rev, _ := utils.ParseNumber(row[colRevenue])
		out = append(out, Payload{
			APIKey: apiKey,
			Data: []OrderData{{
				Master: Master{
					NgayCT:       row[colOrderDate],
					MaCT:         row[colDocType],
					SoCT:         row[colDocNumber],
					MaBoPhan:     row[colDepartment],
					MaDonHang:    orderID,
					TenKhachHang: row[colCustomer],
					SoDienThoai:  row[colPhone],
					TinhThanh:    row[colProvince],
					QuanHuyen:    row[colDistrict],
					PhuongXa:     row[colWard],
					DiaChi:       row[colAddress],
				},
				Detail: []Detail{{
					MaHang:   row[colProduct],
					TenHang:  row[colProdName],
					IMEI:     row[colIMEI],
					SoLuong:  qty,
					DoanhThu: rev,
				}},
			}},
		})
	}
	return out, skipped
}
