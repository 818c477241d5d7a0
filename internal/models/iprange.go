package models

type IPRangeType string

const (
	IPRangeTypeDynamic  IPRangeType = "dynamic"
	IPRangeTypeReserved IPRangeType = "reserved"
)

func (t IPRangeType) Valid() bool {
	return t == IPRangeTypeDynamic || t == IPRangeTypeReserved
}

type IPRange struct {
	Base
	Type     IPRangeType `gorm:"column:type;type:varchar(20)" json:"type"`
	StartIP  string      `gorm:"column:start_ip;type:varchar(45)" json:"start_ip"`
	EndIP    string      `gorm:"column:end_ip;type:varchar(45)" json:"end_ip"`
	Comment  string      `gorm:"column:comment;type:varchar(255)" json:"comment"`
	SubnetID int         `gorm:"column:subnet_id;index" json:"subnet_id"`
}

func (IPRange) TableName() string { return IPRangesTable }

func (r IPRange) Etag() string {
	r.Base = r.Base.content()
	return etag(r)
}
