package models

type Fabric struct {
	Base
	Name        string  `gorm:"column:name;type:varchar(256);uniqueIndex" json:"name"`
	Description string  `gorm:"column:description;type:text" json:"description"`
	ClassType   *string `gorm:"column:class_type;type:varchar(256)" json:"class_type"`
}

func (Fabric) TableName() string { return FabricsTable }

func (f Fabric) Etag() string {
	f.Base = f.Base.content()
	return etag(f)
}
