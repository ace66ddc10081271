package main

import (
	"fmt"
	"time"

	"github.com/goliatone/go-datagrid/components/datagrid"
)

var (
	demoFirstNames = []string{"Ann", "Bob", "Cid", "Dee", "Eve", "Fay", "Gus", "Hal", "Ida", "Jon"}
	demoLastNames  = []string{"Evans", "Adams", "Clark", "Diaz", "Brown", "Ford", "Green", "Hill", "Irwin", "Jones"}
	demoMakes      = [][2]string{{"Toyota", "Corolla"}, {"Ford", "Focus"}, {"Kia", "Rio"}, {"VW", "Golf"}, {"Tesla", "Model 3"}}
	demoBranches   = []string{"north", "south", "airport"}
	demoStatuses   = []string{"open", "closed", "void"}
	demoResStatus  = []string{"open", "cancelled", "noShow"}
	demoEpoch      = time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)
)

// demoRows builds deterministic rows for every built-in module.
func demoRows(count int) map[string][]datagrid.Row {
	out := map[string][]datagrid.Row{}
	for i := 0; i < count; i++ {
		first := demoFirstNames[i%len(demoFirstNames)]
		last := demoLastNames[(i/len(demoFirstNames))%len(demoLastNames)]
		customer := first + " " + last
		vehicle := fmt.Sprintf("V-%04d", 1000+i)
		makeModel := demoMakes[i%len(demoMakes)]
		branch := demoBranches[i%len(demoBranches)]
		pickup := demoEpoch.AddDate(0, 0, i%90)

		out[datagrid.ModuleCustomers] = append(out[datagrid.ModuleCustomers], datagrid.Row{
			"customerId":    fmt.Sprintf("C-%05d", i+1),
			"firstName":     first,
			"lastName":      last,
			"email":         fmt.Sprintf("%s.%s%d@example.test", first, last, i),
			"phone":         fmt.Sprintf("+1-555-%04d", i),
			"licenseNumber": fmt.Sprintf("DL%07d", 300000+i*7),
			"status":        i%9 != 0,
		})
		out[datagrid.ModuleVehicles] = append(out[datagrid.ModuleVehicles], datagrid.Row{
			"vehicleNo":    vehicle,
			"licensePlate": fmt.Sprintf("%03d-%s", i%1000, string(rune('A'+i%26))+string(rune('A'+(i/26)%26))),
			"make":         makeModel[0],
			"model":        makeModel[1],
			"year":         2019 + i%7,
			"odometer":     12000 + i*137,
			"branch":       branch,
			"status":       i%11 != 0,
		})
		out[datagrid.ModuleAgreements] = append(out[datagrid.ModuleAgreements], datagrid.Row{
			"agreementNumber": fmt.Sprintf("RA-%06d", 500000+i),
			"customerName":    customer,
			"vehicleNo":       vehicle,
			"pickupDate":      pickup.Format(time.DateOnly),
			"returnDate":      pickup.AddDate(0, 0, 1+i%6).Format(time.DateOnly),
			"agreementStatus": demoStatuses[i%len(demoStatuses)],
			"status":          demoStatuses[i%len(demoStatuses)],
			"totalAmount":     fmt.Sprintf("%.2f", 49.5+float64(i%40)*12.25),
			"branch":          branch,
		})
		out[datagrid.ModuleReservations] = append(out[datagrid.ModuleReservations], datagrid.Row{
			"reservationNumber": fmt.Sprintf("RS-%06d", 700000+i),
			"customerName":      customer,
			"vehicleType":       makeModel[1],
			"pickupDate":        pickup.AddDate(0, 0, 14).Format(time.DateOnly),
			"returnDate":        pickup.AddDate(0, 0, 16+i%5).Format(time.DateOnly),
			"reservationStatus": demoResStatus[i%len(demoResStatus)],
			"status":            demoResStatus[i%len(demoResStatus)],
		})
		days := (i * 7) % 31
		out[datagrid.ModuleFleetReport] = append(out[datagrid.ModuleFleetReport], datagrid.Row{
			"vehicleNo":    vehicle,
			"licensePlate": fmt.Sprintf("%03d-%s", i%1000, string(rune('A'+i%26))+string(rune('A'+(i/26)%26))),
			"branch":       branch,
			"daysRented":   days,
			"utilization":  fmt.Sprintf("%.1f", float64(days)/31*100),
			"revenue":      days * 54,
			"fromDate":     demoEpoch.Format(time.DateOnly),
			"toDate":       demoEpoch.AddDate(0, 1, 0).Format(time.DateOnly),
		})
	}
	return out
}

// registerDemoSources attaches in-memory row sources to every module that has
// demo rows and no source yet.
func registerDemoSources(registry datagrid.ModuleRegistry, count int) error {
	rows := demoRows(count)
	for _, module := range registry.Modules() {
		if _, ok := registry.Source(module.Key); ok {
			continue
		}
		data, ok := rows[module.Key]
		if !ok {
			continue
		}
		if err := registry.RegisterSource(module.Key, &datagrid.StaticRowSource{
			Rows:    data,
			Filters: module.Filters,
		}); err != nil {
			return err
		}
	}
	return nil
}
