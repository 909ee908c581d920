package httpimpl

import (
	"time"

	"github.com/bsv-blockchain/fractionalize/model"
	"github.com/bsv-blockchain/fractionalize/services/fractionalize/query"
	"github.com/bsv-blockchain/fractionalize/services/fractionalize/repository"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

type successResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type echoedQuery struct {
	TxID      string `json:"txid,omitempty"`
	Limit     int    `json:"limit"`
	Skip      int    `json:"skip"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	SortOrder string `json:"sortOrder"`
}

type recordsData struct {
	Records []*model.UTXORef `json:"records"`
	Count   int              `json:"count"`
	Query   echoedQuery      `json:"query"`
}

type overviewStatistics struct {
	Last24h uint64 `json:"last24h"`
	Last7d  uint64 `json:"last7d"`
	Last30d uint64 `json:"last30d"`
}

type overviewData struct {
	TotalRecords  uint64             `json:"totalRecords"`
	RecentRecords []*model.UTXORef   `json:"recentRecords"`
	Statistics    overviewStatistics `json:"statistics"`
}

type databaseStats struct {
	Collections int    `json:"collections"`
	Indexes     int    `json:"indexes"`
	StorageSize *int64 `json:"storageSize,omitempty"`
}

type recentActivity struct {
	Last1h  uint64 `json:"last1h"`
	Last24h uint64 `json:"last24h"`
	Last7d  uint64 `json:"last7d"`
	Last30d uint64 `json:"last30d"`
}

type adminStatsData struct {
	TotalRecords   uint64         `json:"totalRecords"`
	DatabaseStats  databaseStats  `json:"databaseStats"`
	RecentActivity recentActivity `json:"recentActivity"`
}

type adminHealthData struct {
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}

func success(data interface{}) *successResponse {
	return &successResponse{Status: statusSuccess, Data: data}
}

func newRecordsResponse(spec *query.Spec, refs []*model.UTXORef) *successResponse {
	if refs == nil {
		refs = []*model.UTXORef{}
	}

	return success(&recordsData{
		Records: refs,
		Count:   len(refs),
		Query: echoedQuery{
			TxID:      spec.TxID,
			Limit:     spec.Limit,
			Skip:      spec.Skip,
			StartDate: spec.RawStartDate,
			EndDate:   spec.RawEndDate,
			SortOrder: spec.SortOrder.String(),
		},
	})
}

func newOverviewResponse(stats *repository.Statistics) *successResponse {
	recent := stats.Recent
	if recent == nil {
		recent = []*model.UTXORef{}
	}

	return success(&overviewData{
		TotalRecords:  total(stats),
		RecentRecords: recent,
		Statistics: overviewStatistics{
			Last24h: stats.Windows["last24h"],
			Last7d:  stats.Windows["last7d"],
			Last30d: stats.Windows["last30d"],
		},
	})
}

func newAdminStatsResponse(stats *repository.Statistics) *successResponse {
	data := &adminStatsData{
		TotalRecords: total(stats),
		RecentActivity: recentActivity{
			Last1h:  stats.Windows["last1h"],
			Last24h: stats.Windows["last24h"],
			Last7d:  stats.Windows["last7d"],
			Last30d: stats.Windows["last30d"],
		},
	}

	if md := stats.Metadata; md != nil {
		data.DatabaseStats = databaseStats{
			Collections: md.Collections,
			Indexes:     md.Indexes,
			StorageSize: md.StorageSize,
		}
	}

	return success(data)
}

func newAdminHealthResponse(at time.Time) *successResponse {
	return success(&adminHealthData{
		Database:  "connected",
		Timestamp: at.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
}

func total(stats *repository.Statistics) uint64 {
	if stats.Total == nil {
		return 0
	}

	return *stats.Total
}
