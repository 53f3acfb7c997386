// Package report writes optimization results to CSV and JSON files in the
// output directory configured for the run.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/lspgroup/fleetopt-go/internal/application/assignment"
	"github.com/lspgroup/fleetopt-go/internal/domain/fleet"
	"github.com/lspgroup/fleetopt-go/internal/domain/planning"
)

const datetimeFormat = "2006-01-02 15:04:05"

// WriteAssignments writes the assignment log to a CSV file. The vehicles
// slice supplies registration numbers; rows keep the log's chronological
// order.
func WriteAssignments(outputPath string, assignments []*assignment.Assignment, vehicles []*fleet.Vehicle) error {
	registrations := make(map[int64]string, len(vehicles))
	for _, v := range vehicles {
		registrations[v.ID] = v.RegistrationNumber
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := []string{
		"route_id",
		"vehicle_id",
		"registration",
		"start_datetime",
		"end_datetime",
		"start_location_id",
		"end_location_id",
		"distance_km",
		"requires_relocation",
		"relocation_from",
		"relocation_to",
		"relocation_km",
		"relocation_hours",
		"relocation_cost_pln",
		"requires_service",
		"service_cost_pln",
		"overage_km",
		"overage_cost_pln",
		"total_cost_pln",
		"odometer_before_km",
		"odometer_after_km",
		"lease_year_km_before",
		"lease_year_km_after",
		"chain_score",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, a := range assignments {
		relocationFrom := ""
		relocationTo := ""
		if a.RequiresRelocation {
			relocationFrom = strconv.FormatInt(a.RelocationFromID, 10)
			relocationTo = strconv.FormatInt(a.RelocationToID, 10)
		}

		row := []string{
			strconv.FormatInt(a.RouteID, 10),
			strconv.FormatInt(a.VehicleID, 10),
			registrations[a.VehicleID],
			a.RouteStart.Format(datetimeFormat),
			a.RouteEnd.Format(datetimeFormat),
			strconv.FormatInt(a.RouteStartLocID, 10),
			strconv.FormatInt(a.RouteEndLocID, 10),
			fmt.Sprintf("%.2f", a.RouteKm),
			strconv.FormatBool(a.RequiresRelocation),
			relocationFrom,
			relocationTo,
			fmt.Sprintf("%.2f", a.RelocationKm),
			fmt.Sprintf("%.2f", a.RelocationHours),
			fmt.Sprintf("%.2f", a.RelocationCostPLN),
			strconv.FormatBool(a.RequiresService),
			fmt.Sprintf("%.2f", a.ServiceCostPLN),
			strconv.Itoa(a.OverageKm),
			fmt.Sprintf("%.2f", a.OverageCostPLN),
			fmt.Sprintf("%.2f", a.CostPLN),
			strconv.Itoa(a.OdometerBeforeKm),
			strconv.Itoa(a.OdometerAfterKm),
			strconv.Itoa(a.LeaseYearKmBefore),
			strconv.Itoa(a.LeaseYearKmAfter),
			fmt.Sprintf("%.4f", a.ChainScore),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV file: %w", err)
	}
	return nil
}

// WriteVehicleStates writes the final per-vehicle state to a CSV file,
// sorted by vehicle id.
func WriteVehicleStates(outputPath string, states []fleet.Snapshot) error {
	sorted := make([]fleet.Snapshot, len(states))
	copy(sorted, states)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].VehicleID < sorted[j].VehicleID })

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := []string{
		"vehicle_id",
		"final_location_id",
		"odometer_km",
		"km_this_lease_year",
		"total_lifetime_km",
		"annual_limit_km",
		"overage_km",
		"overage_ratio",
		"total_relocations",
		"relocation_cost_pln",
		"overage_cost_pln",
		"service_count",
		"service_cost_pln",
		"routes_completed",
		"km_since_service",
		"service_due",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, s := range sorted {
		overageKm := s.KmThisLeaseYear - s.AnnualLimitKm
		if overageKm < 0 {
			overageKm = 0
		}
		overageRatio := 0.0
		if s.AnnualLimitKm > 0 {
			overageRatio = float64(s.KmThisLeaseYear) / float64(s.AnnualLimitKm)
		}
		serviceDue := s.ServiceIntervalKm > 0 && s.KmSinceService >= s.ServiceIntervalKm

		row := []string{
			strconv.FormatInt(s.VehicleID, 10),
			strconv.FormatInt(s.LocationID, 10),
			strconv.Itoa(s.OdometerKm),
			strconv.Itoa(s.KmThisLeaseYear),
			strconv.Itoa(s.TotalLifetimeKm),
			strconv.Itoa(s.AnnualLimitKm),
			strconv.Itoa(overageKm),
			fmt.Sprintf("%.2f%%", overageRatio*100),
			strconv.Itoa(s.TotalRelocations),
			fmt.Sprintf("%.2f", s.RelocationCost),
			fmt.Sprintf("%.2f", s.OverageCost),
			strconv.Itoa(s.ServiceCount),
			fmt.Sprintf("%.2f", s.ServiceCost),
			strconv.Itoa(s.RoutesCompleted),
			strconv.Itoa(s.KmSinceService),
			strconv.FormatBool(serviceDue),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV file: %w", err)
	}
	return nil
}

// WriteUnassigned writes the routes no vehicle could take, with the
// rejection counts that explain each one.
func WriteUnassigned(outputPath string, unassigned []*assignment.Unassigned) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := []string{
		"route_id",
		"start_datetime",
		"start_location_id",
		"reason",
		"detail",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, u := range unassigned {
		row := []string{
			strconv.FormatInt(u.RouteID, 10),
			u.StartTime.Format(datetimeFormat),
			strconv.FormatInt(u.StartLocID, 10),
			string(u.DominantReason),
			reasonDetail(u.Reasons),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV file: %w", err)
	}
	return nil
}

// reasonDetail flattens the rejection counts into "REASON=n" pairs, sorted
// so the column is stable across runs.
func reasonDetail(reasons map[planning.Reason]int) string {
	keys := make([]string, 0, len(reasons))
	for reason := range reasons {
		keys = append(keys, string(reason))
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", key, reasons[planning.Reason(key)]))
	}
	return strings.Join(parts, " ")
}
