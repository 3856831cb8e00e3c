package types

import "time"

// AlertRecord is the document handed to the persistence collaborator when
// the alert gate admits a detection. It is built once at admission time and
// not retained in-process afterwards.
type AlertRecord struct {
	ID               string    `json:"id"`
	Types            []string  `json:"type"`
	SubType          string    `json:"sub_type,omitempty"`
	PersonName       string    `json:"person_name,omitempty"`
	Confidence       float64   `json:"confidence,omitempty"`
	PeopleCount      int       `json:"people_count,omitempty"`
	ViolenceDetected bool      `json:"violence_detected"`
	Location         string    `json:"location"`
	Date             string    `json:"date"`
	Time             string    `json:"time"`
	CreatedAt        time.Time `json:"-"`
}

// SystemStatus is the point-in-time status surface read by the status
// endpoint. Field names mirror the dashboard wire contract; the
// violence_status field is backed by the Identity category.
type SystemStatus struct {
	CrowdCount     string `json:"crowd_count"`
	WeaponStatus   string `json:"weapon_status"`
	ViolenceStatus string `json:"violence_status"`
	SystemActive   bool   `json:"system_active"`
}
