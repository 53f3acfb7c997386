package persistence

import (
	"time"
)

// DatasetModel represents the datasets table. Every upload gets a new row;
// the entity tables hang off it so imports never overwrite each other.
type DatasetModel struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

func (DatasetModel) TableName() string {
	return "datasets"
}

// LocationModel represents the locations table
type LocationModel struct {
	ID        int64   `gorm:"column:id;primaryKey"`
	DatasetID int64   `gorm:"column:dataset_id;primaryKey;not null;index"`
	Name      string  `gorm:"column:name;not null"`
	Lat       float64 `gorm:"column:lat;not null"`
	Long      float64 `gorm:"column:long;not null"`
	IsHub     int     `gorm:"column:is_hub;not null;default:0"` // 0 or 1 (SQLite compatible)
}

func (LocationModel) TableName() string {
	return "locations"
}

// EdgeModel represents the locations_relations table, one row per directed
// relation.
type EdgeModel struct {
	ID        int64   `gorm:"column:id;primaryKey"`
	DatasetID int64   `gorm:"column:dataset_id;primaryKey;not null;index"`
	FromID    int64   `gorm:"column:id_loc_1;not null"`
	ToID      int64   `gorm:"column:id_loc_2;not null"`
	DistKm    float64 `gorm:"column:dist;not null"`
	TimeHours float64 `gorm:"column:time;not null"`
}

func (EdgeModel) TableName() string {
	return "locations_relations"
}

// RouteModel represents the routes table
type RouteModel struct {
	ID         int64     `gorm:"column:id;primaryKey"`
	DatasetID  int64     `gorm:"column:dataset_id;primaryKey;not null;index"`
	StartTime  time.Time `gorm:"column:start_datetime;not null"`
	EndTime    time.Time `gorm:"column:end_datetime;not null"`
	DistanceKm float64   `gorm:"column:distance_km;not null"`
}

func (RouteModel) TableName() string {
	return "routes"
}

// SegmentModel represents the segments table
type SegmentModel struct {
	ID         int64     `gorm:"column:id;primaryKey"`
	DatasetID  int64     `gorm:"column:dataset_id;primaryKey;not null;index"`
	RouteID    int64     `gorm:"column:route_id;not null;index"`
	Seq        int       `gorm:"column:seq;not null"`
	StartLocID int64     `gorm:"column:start_loc_id;not null"`
	EndLocID   int64     `gorm:"column:end_loc_id;not null"`
	StartTime  time.Time `gorm:"column:start_datetime;not null"`
	EndTime    time.Time `gorm:"column:end_datetime;not null"`
	RelationID int64     `gorm:"column:relation_id"`
}

func (SegmentModel) TableName() string {
	return "segments"
}

// VehicleModel represents the vehicles table
type VehicleModel struct {
	ID                int64     `gorm:"column:id;primaryKey"`
	DatasetID         int64     `gorm:"column:dataset_id;primaryKey;not null;index"`
	Registration      string    `gorm:"column:registration_number;not null"`
	Brand             string    `gorm:"column:brand"`
	ServiceIntervalKm int       `gorm:"column:service_interval_km;not null"`
	LeasingStartKm    int       `gorm:"column:leasing_start_km;not null"`
	LeasingLimitKm    int       `gorm:"column:leasing_limit_km;not null"`
	LeasingStartDate  time.Time `gorm:"column:leasing_start_date;not null"`
	LeasingEndDate    time.Time `gorm:"column:leasing_end_date;not null"`
	CurrentOdometerKm int       `gorm:"column:current_odometer_km;not null"`
	CurrentLocationID *int64    `gorm:"column:current_location_id"` // NULL when master data has no position
}

func (VehicleModel) TableName() string {
	return "vehicles"
}

// RunModel represents the runs table, one row per optimization run.
type RunModel struct {
	ID              string    `gorm:"column:id;primaryKey"`
	StartedAt       time.Time `gorm:"column:started_at;not null"`
	DurationSeconds float64   `gorm:"column:duration_seconds;not null"`
	Cancelled       int       `gorm:"column:cancelled;not null;default:0"` // 0 or 1 (SQLite compatible)

	FleetSize        int `gorm:"column:fleet_size;not null"`
	RoutesTotal      int `gorm:"column:routes_total;not null"`
	RoutesAssigned   int `gorm:"column:routes_assigned;not null"`
	RoutesUnassigned int `gorm:"column:routes_unassigned;not null"`

	TotalCostPLN      float64 `gorm:"column:total_cost_pln;not null"`
	RelocationCount   int     `gorm:"column:relocation_count;not null"`
	RelocationCostPLN float64 `gorm:"column:relocation_cost_pln;not null"`
	ServiceCount      int     `gorm:"column:service_count;not null"`
	ServiceCostPLN    float64 `gorm:"column:service_cost_pln;not null"`
	OverageKm         int     `gorm:"column:overage_km;not null"`
	OverageCostPLN    float64 `gorm:"column:overage_cost_pln;not null"`

	UnassignedByReason string `gorm:"column:unassigned_by_reason;type:text"` // JSON map as text
	Options            string `gorm:"column:options;type:text"`              // config echo, JSON as text
}

func (RunModel) TableName() string {
	return "runs"
}

// AssignmentModel represents the assignments table, one row per assigned
// route of a run.
type AssignmentModel struct {
	ID    int64     `gorm:"column:id;primaryKey;autoIncrement"`
	RunID string    `gorm:"column:run_id;not null;index"`
	Run   *RunModel `gorm:"foreignKey:RunID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`

	RouteID   int64     `gorm:"column:route_id;not null"`
	VehicleID int64     `gorm:"column:vehicle_id;not null"`
	Date      time.Time `gorm:"column:date;not null"`

	RouteKm         float64   `gorm:"column:route_km;not null"`
	RouteStart      time.Time `gorm:"column:route_start;not null"`
	RouteEnd        time.Time `gorm:"column:route_end;not null"`
	RouteStartLocID int64     `gorm:"column:route_start_loc_id;not null"`
	RouteEndLocID   int64     `gorm:"column:route_end_loc_id;not null"`

	RequiresRelocation int        `gorm:"column:requires_relocation;not null;default:0"`
	RelocationFromID   int64      `gorm:"column:relocation_from_id"`
	RelocationToID     int64      `gorm:"column:relocation_to_id"`
	RelocationKm       float64    `gorm:"column:relocation_km"`
	RelocationHours    float64    `gorm:"column:relocation_hours"`
	RelocationCostPLN  float64    `gorm:"column:relocation_cost_pln"`
	RequiresService    int        `gorm:"column:requires_service;not null;default:0"`
	ServiceStart       *time.Time `gorm:"column:service_start"`
	ServiceEnd         *time.Time `gorm:"column:service_end"`
	ServiceCostPLN     float64    `gorm:"column:service_cost_pln"`

	OverageKm         int     `gorm:"column:overage_km"`
	OverageCostPLN    float64 `gorm:"column:overage_cost_pln"`
	ServicePenaltyPLN float64 `gorm:"column:service_penalty_pln"`
	CostPLN           float64 `gorm:"column:cost_pln;not null"`
	ChainScore        float64 `gorm:"column:chain_score"`

	OdometerBeforeKm  int `gorm:"column:odometer_before_km;not null"`
	OdometerAfterKm   int `gorm:"column:odometer_after_km;not null"`
	LeaseYearKmBefore int `gorm:"column:lease_year_km_before;not null"`
	LeaseYearKmAfter  int `gorm:"column:lease_year_km_after;not null"`
}

func (AssignmentModel) TableName() string {
	return "assignments"
}

// UnassignedModel represents the unassigned_routes table
type UnassignedModel struct {
	ID    int64     `gorm:"column:id;primaryKey;autoIncrement"`
	RunID string    `gorm:"column:run_id;not null;index"`
	Run   *RunModel `gorm:"foreignKey:RunID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`

	RouteID        int64     `gorm:"column:route_id;not null"`
	StartTime      time.Time `gorm:"column:start_time;not null"`
	StartLocID     int64     `gorm:"column:start_loc_id;not null"`
	DominantReason string    `gorm:"column:dominant_reason;not null"`
	Reasons        string    `gorm:"column:reasons;type:text"` // JSON map as text
}

func (UnassignedModel) TableName() string {
	return "unassigned_routes"
}

// VehicleStateModel represents the vehicle_states table: the end-of-run
// state of every vehicle.
type VehicleStateModel struct {
	ID    int64     `gorm:"column:id;primaryKey;autoIncrement"`
	RunID string    `gorm:"column:run_id;not null;index"`
	Run   *RunModel `gorm:"foreignKey:RunID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`

	VehicleID       int64     `gorm:"column:vehicle_id;not null"`
	LocationID      int64     `gorm:"column:location_id;not null"`
	OdometerKm      int       `gorm:"column:odometer_km;not null"`
	KmSinceService  int       `gorm:"column:km_since_service;not null"`
	KmThisLeaseYear int       `gorm:"column:km_this_lease_year;not null"`
	TotalLifetimeKm int       `gorm:"column:total_lifetime_km;not null"`
	AvailableFrom   time.Time `gorm:"column:available_from"`
	LeaseCycle      int       `gorm:"column:lease_cycle;not null"`

	TotalRelocations int     `gorm:"column:total_relocations;not null"`
	RelocationCost   float64 `gorm:"column:relocation_cost;not null"`
	OverageCost      float64 `gorm:"column:overage_cost;not null"`
	ServiceCount     int     `gorm:"column:service_count;not null"`
	ServiceCost      float64 `gorm:"column:service_cost;not null"`
	RoutesCompleted  int     `gorm:"column:routes_completed;not null"`
}

func (VehicleStateModel) TableName() string {
	return "vehicle_states"
}
