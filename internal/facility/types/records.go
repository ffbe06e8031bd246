package types

import "time"

type ParkingRecord struct {
	ID                   int        `json:"id"`
	VisitReservationTime *time.Time `json:"visitReservationTime,omitempty"`
	ErrandsRelationship  string     `json:"errandsRelationship"`
	CarNumber            string     `json:"carNumber"`
	FamilyNames          string     `json:"familyNames"`
	ManagerName          string     `json:"managerName"`
	DepartureTime        *time.Time `json:"departureTime,omitempty"`
	ParkingPermit        *string    `json:"parkingPermit,omitempty"`
	ParkingPosition      *string    `json:"parkingPosition,omitempty"`
	StatusID             int        `json:"parkingStatusId"`
	RemarksColumn        *string    `json:"remarksColumn,omitempty"`
	UpdateTime           time.Time  `json:"updateTime"`
}

type VisitorRecord struct {
	ID                   int        `json:"id"`
	VisitReservationTime time.Time  `json:"visitReservationTime"`
	ErrandsRelationship  string     `json:"errandsRelationship"`
	VisitorName          string     `json:"visitorName"`
	FamilyNames          string     `json:"familyNames"`
	ManagerName          string     `json:"managerName"`
	CompilationCmpTime   *time.Time `json:"compilationCmpTime,omitempty"`
	StatusID             int        `json:"visitSituationId"`
	RemarksColumn        *string    `json:"remarksColumn,omitempty"`
	UpdateTime           time.Time  `json:"updateTime"`
}

type BusRecord struct {
	ID                   int        `json:"id"`
	VisitReservationTime time.Time  `json:"visitReservationTime"`
	BusName              string     `json:"busName"`
	BusDestination       string     `json:"busDestination"`
	EmptybusDepTime      *time.Time `json:"emptybusDepTime,omitempty"`
	ScheduledDepTime     time.Time  `json:"scheduledDepTime"`
	DepartureTime        *time.Time `json:"departureTime,omitempty"`
	FamilyNames          string     `json:"familyNames"`
	ManagerName          string     `json:"managerName"`
	Passengers           int16      `json:"passengers"`
	StatusID             int        `json:"busSituationId"`
	RemarksColumn        *string    `json:"remarksColumn,omitempty"`
	UpdateTime           time.Time  `json:"updateTime"`
}

// Clone returns a deep copy so the copy can be mutated independently.
func (r ParkingRecord) Clone() ParkingRecord {
	r.VisitReservationTime = cloneTime(r.VisitReservationTime)
	r.DepartureTime = cloneTime(r.DepartureTime)
	r.ParkingPermit = cloneString(r.ParkingPermit)
	r.ParkingPosition = cloneString(r.ParkingPosition)
	r.RemarksColumn = cloneString(r.RemarksColumn)
	return r
}

func (r VisitorRecord) Clone() VisitorRecord {
	r.CompilationCmpTime = cloneTime(r.CompilationCmpTime)
	r.RemarksColumn = cloneString(r.RemarksColumn)
	return r
}

func (r BusRecord) Clone() BusRecord {
	r.EmptybusDepTime = cloneTime(r.EmptybusDepTime)
	r.DepartureTime = cloneTime(r.DepartureTime)
	r.RemarksColumn = cloneString(r.RemarksColumn)
	return r
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
