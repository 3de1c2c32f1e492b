// models.go this is our database models
package main

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// table and collection names
const (
	colAccounts    = "accounts"
	colProjects    = "projects"
	colSkills      = "skills"
	colExperiences = "experiences"
	colStats       = "stats"
	colContacts    = "contacts"
	colSettings    = "settings"
)

const RoleAdmin = "admin"

// Base holds the id and timestamps every record carries. Column and bson names
// match so a field update map works against either store.
type Base struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

type Account struct {
	Base         `bson:",inline"`
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email" bson:"email"`
	Name         string `json:"name,omitempty" bson:"name"`
	PasswordHash string `gorm:"not null" json:"-" bson:"password_hash"`
	Role         string `gorm:"size:32;not null" json:"role" bson:"role"`
}

func (Account) TableName() string { return colAccounts }

type ProjectCategory string

const (
	CategoryFrontend  ProjectCategory = "Frontend"
	CategoryBackend   ProjectCategory = "Backend"
	CategoryFullStack ProjectCategory = "Full Stack"
	CategoryMobile    ProjectCategory = "Mobile"
	CategoryUIUX      ProjectCategory = "UI/UX"
	CategoryOther     ProjectCategory = "Other"
)

var projectCategories = []ProjectCategory{
	CategoryFrontend, CategoryBackend, CategoryFullStack, CategoryMobile, CategoryUIUX, CategoryOther,
}

type Project struct {
	Base            `bson:",inline"`
	Title           string          `gorm:"size:100;not null" json:"title" bson:"title"`
	Description     string          `gorm:"not null" json:"description" bson:"description"`
	LongDescription string          `json:"longDescription,omitempty" bson:"long_description"`
	Category        ProjectCategory `gorm:"size:32;not null" json:"category" bson:"category"`
	Tech            StringList      `json:"tech" bson:"tech"`
	Image           string          `json:"image" bson:"image"`
	Link            string          `json:"link,omitempty" bson:"link"`
	Github          string          `json:"github,omitempty" bson:"github"`
	Featured        bool            `json:"featured" bson:"featured"`
	OwnerID         string          `gorm:"size:36;index;not null" json:"user" bson:"owner_id"`
}

func (Project) TableName() string { return colProjects }

type SkillCategory string

const (
	SkillFrontend SkillCategory = "Frontend"
	SkillBackend  SkillCategory = "Backend"
	SkillTools    SkillCategory = "Tools"
	SkillOther    SkillCategory = "Other"
)

var skillCategories = []SkillCategory{SkillFrontend, SkillBackend, SkillTools, SkillOther}

type Skill struct {
	Base     `bson:",inline"`
	Name     string        `gorm:"uniqueIndex;size:100;not null" json:"name" bson:"name"`
	Category SkillCategory `gorm:"size:32;not null" json:"category" bson:"category"`
	Level    int           `json:"level" bson:"level"`
	Image    string        `json:"image" bson:"image"` // icon url or icon class
	Featured bool          `json:"featured" bson:"featured"`
	OwnerID  string        `gorm:"size:36;index;not null" json:"user" bson:"owner_id"`
}

func (Skill) TableName() string { return colSkills }

// Experience periods are display labels ("2021", "Present"), not dates.
type Experience struct {
	Base        `bson:",inline"`
	Title       string `gorm:"not null" json:"title" bson:"title"`
	Company     string `gorm:"not null" json:"company" bson:"company"`
	Location    string `json:"location,omitempty" bson:"location"`
	From        string `gorm:"column:start_label;not null" json:"from" bson:"start_label"`
	To          string `gorm:"column:end_label;not null" json:"to" bson:"end_label"`
	Current     bool   `json:"current" bson:"current"`
	Description string `gorm:"not null" json:"description" bson:"description"`
	OwnerID     string `gorm:"size:36;index;not null" json:"user" bson:"owner_id"`
}

func (Experience) TableName() string { return colExperiences }

type Stat struct {
	Base    `bson:",inline"`
	Label   string `gorm:"not null" json:"label" bson:"label"`
	Value   string `gorm:"not null" json:"value" bson:"value"`
	Order   int    `gorm:"column:display_order" json:"order" bson:"display_order"`
	OwnerID string `gorm:"size:36;index;not null" json:"user" bson:"owner_id"`
}

func (Stat) TableName() string { return colStats }

type ContactStatus string

const (
	StatusNew      ContactStatus = "new"
	StatusRead     ContactStatus = "read"
	StatusReplied  ContactStatus = "replied"
	StatusArchived ContactStatus = "archived"
)

var contactStatuses = []ContactStatus{StatusNew, StatusRead, StatusReplied, StatusArchived}

func parseContactStatus(s string) (ContactStatus, bool) {
	for _, st := range contactStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

type ContactSubmission struct {
	Base      `bson:",inline"`
	Name      string        `gorm:"size:100;not null" json:"name" bson:"name"`
	Email     string        `gorm:"size:255;not null" json:"email" bson:"email"`
	Phone     string        `gorm:"size:32" json:"phone,omitempty" bson:"phone"`
	Subject   string        `gorm:"size:200;not null" json:"subject" bson:"subject"`
	Message   string        `gorm:"not null" json:"message" bson:"message"`
	IPAddress string        `gorm:"size:64" json:"ipAddress,omitempty" bson:"ip_address"`
	UserAgent string        `json:"userAgent,omitempty" bson:"user_agent"`
	Status    ContactStatus `gorm:"size:16;index;not null" json:"status" bson:"status"`
}

func (ContactSubmission) TableName() string { return colContacts }

// SiteSetting is a free-form key/value pair the frontend reads at boot.
type SiteSetting struct {
	Base        `bson:",inline"`
	Key         string `gorm:"uniqueIndex;size:100;not null" json:"key" bson:"key"`
	Value       string `gorm:"not null" json:"value" bson:"value"`
	Description string `json:"description,omitempty" bson:"description"`
}

func (SiteSetting) TableName() string { return colSettings }

// StringList is stored as a JSON array column in SQL and as a native array in Mongo.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	return string(b), err
}

func (l *StringList) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return errors.New("StringList: unsupported column type")
	}
	return json.Unmarshal(b, (*[]string)(l))
}

func (StringList) GormDataType() string { return "text" }
