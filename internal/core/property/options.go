package property

const (
	StatusAvailable = "available"
	StatusSold      = "sold"
	StatusRented    = "rented"
	StatusPending   = "pending"
)

const (
	TypeApartment = "apartment"
	TypeHouse     = "house"
	TypeVilla     = "villa"
	TypeOffice    = "office"
	TypeLand      = "land"
)

type Option struct {
	Value   string `json:"value"`
	LabelVi string `json:"label_vi"`
	LabelJa string `json:"label_ja"`
}

// The empty-value option is the "any" placeholder shown in filter selects.
var StatusOptions = []Option{
	{Value: "", LabelVi: "Trạng thái", LabelJa: "状態"},
	{Value: StatusAvailable, LabelVi: "Còn trống", LabelJa: "空いている"},
	{Value: StatusSold, LabelVi: "Đã bán", LabelJa: "売却済み"},
	{Value: StatusRented, LabelVi: "Đã cho thuê", LabelJa: "賃貸中"},
	{Value: StatusPending, LabelVi: "Đang chờ", LabelJa: "保留中"},
}

var TypeOptions = []Option{
	{Value: "", LabelVi: "Loại BĐS", LabelJa: "不動産の種類"},
	{Value: TypeApartment, LabelVi: "Căn hộ", LabelJa: "アパート"},
	{Value: TypeHouse, LabelVi: "Nhà ở", LabelJa: "住宅"},
	{Value: TypeVilla, LabelVi: "Biệt thự", LabelJa: "別荘"},
	{Value: TypeOffice, LabelVi: "Văn phòng", LabelJa: "オフィス"},
	{Value: TypeLand, LabelVi: "Đất", LabelJa: "土地"},
}

func ValidStatus(s string) bool { return inOptions(StatusOptions, s) }

func ValidType(s string) bool { return inOptions(TypeOptions, s) }

func inOptions(opts []Option, v string) bool {
	for _, o := range opts {
		if o.Value == v {
			return true
		}
	}
	return false
}

func optionValues(opts []Option) []interface{} {
	var out []interface{}
	for _, o := range opts {
		if o.Value != "" {
			out = append(out, o.Value)
		}
	}
	return out
}
