package models

// Secret is a row of the local secrets store. Value holds ciphertext.
type Secret struct {
	Base
	Path  string `gorm:"column:path;type:varchar(255);uniqueIndex"`
	Value []byte `gorm:"column:value"`
}

func (Secret) TableName() string { return SecretsTable }

func (s Secret) Etag() string {
	s.Base = s.Base.content()
	return etag(s)
}
