package models

type DHCPSnippet struct {
	Base
	Name        string `gorm:"column:name;type:varchar(255)" json:"name"`
	Value       string `gorm:"column:value;type:text" json:"value"`
	Description string `gorm:"column:description;type:text" json:"description"`
	Enabled     bool   `gorm:"column:enabled" json:"enabled"`
	SubnetID    *int   `gorm:"column:subnet_id;index" json:"subnet_id"`
	IPRangeID   *int   `gorm:"column:iprange_id;index" json:"iprange_id"`
}

func (DHCPSnippet) TableName() string { return DHCPSnippetsTable }

func (d DHCPSnippet) Etag() string {
	d.Base = d.Base.content()
	return etag(d)
}
