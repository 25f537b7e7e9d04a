package handlers

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"example.com/ai-travel-planner/internal/models"
)

const (
	exportTypeItinerary = "itinerary"
	exportTypeCosts     = "costs"
)

// ExportCSV выгружает сохраненный план в CSV-файл.
func (h *PlanHandler) ExportCSV(c echo.Context) error {
	stored, ok, err := h.loadStoredPlan(c)
	if !ok {
		return err
	}

	exportType := strings.ToLower(strings.TrimSpace(c.QueryParam("type")))
	if exportType == "" {
		exportType = exportTypeItinerary
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	switch exportType {
	case exportTypeItinerary:
		if err := writeItineraryCSV(writer, stored.Plan); err != nil {
			return serverError(c)
		}
	case exportTypeCosts:
		if err := writeCostsCSV(writer, stored.Plan); err != nil {
			return serverError(c)
		}
	default:
		return badRequest(c, "invalid export type")
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return serverError(c)
	}

	filename := "plan-" + stored.ID.String() + "-" + exportType + ".csv"
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// writeItineraryCSV пишет по строке на каждое занятие дня.
func writeItineraryCSV(writer *csv.Writer, plan models.TravelPlan) error {
	if err := writer.Write([]string{"day", "title", "activity", "day_estimated_cost"}); err != nil {
		return err
	}

	for _, day := range plan.Itinerary {
		activities := day.Activities
		if len(activities) == 0 {
			activities = []string{""}
		}
		for _, activity := range activities {
			record := []string{
				strconv.Itoa(day.Day),
				day.Title,
				activity,
				formatAmount(day.EstimatedCost),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}

	return nil
}

func writeCostsCSV(writer *csv.Writer, plan models.TravelPlan) error {
	if err := writer.Write([]string{"category", "amount"}); err != nil {
		return err
	}

	costs := plan.CostBreakdown
	rows := [][]string{
		{"travel", formatAmount(costs.Travel)},
		{"stay", formatAmount(costs.Stay)},
		{"food", formatAmount(costs.Food)},
		{"activities", formatAmount(costs.Activities)},
		{"total", formatAmount(costs.Total)},
	}

	return writer.WriteAll(rows)
}

func formatAmount(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
