package db

import "roboterms/internal/domain"

type CompanyModel struct {
	ID      int64  `gorm:"primaryKey"`
	Name    string `gorm:"size:80;uniqueIndex;not null"`
	Website string `gorm:"size:80;uniqueIndex;not null"`
}

func (CompanyModel) TableName() string { return "companies" }

func (m CompanyModel) toDomain() domain.Company {
	return domain.Company{ID: m.ID, Name: m.Name, Website: m.Website}
}

type PolicyModel struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"size:80;uniqueIndex;not null"`
	Body string `gorm:"size:3000;not null"`
}

func (PolicyModel) TableName() string { return "policies" }

func (m PolicyModel) toDomain() domain.Policy {
	return domain.Policy{ID: m.ID, Name: m.Name, Body: m.Body}
}
