package admin

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/myshop/myshop-manager/internal/apisrv/response"
	"github.com/myshop/myshop-manager/internal/dto"
	gerr "github.com/myshop/myshop-manager/internal/errors"
	"github.com/myshop/myshop-manager/internal/report"
	"github.com/myshop/myshop-manager/internal/stats"
)

func statsQuery(r *http.Request) stats.Query {
	q := r.URL.Query()
	return stats.Query{
		Period: q.Get("period"),
		Value:  q.Get("value"),
		Region: q.Get("region"),
	}
}

// RealTimeStats returns statistics for the current period up to now, or for
// the labelled period when value is set.
func (s *Server) RealTimeStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.stats.Statistics(r.Context(), statsQuery(r))
	if err != nil {
		response.Error(w, r, "can't get real-time statistics", err)
		return
	}
	response.JSON(w, r, http.StatusOK, dto.ConvertEntityStatisticsToDto(st, false))
}

// PeriodStats returns statistics for a labelled period with the week
// breakdown and buyer metrics.
func (s *Server) PeriodStats(w http.ResponseWriter, r *http.Request) {
	q := statsQuery(r)
	if strings.TrimSpace(q.Value) == "" {
		response.Error(w, r, "", gerr.Validation("value", "is required"))
		return
	}
	st, err := s.stats.Statistics(r.Context(), q)
	if err != nil {
		response.Error(w, r, "can't get period statistics", err)
		return
	}
	response.JSON(w, r, http.StatusOK, dto.ConvertEntityStatisticsToDto(st, true))
}

// Report downloads the statistics as a standalone HTML page.
func (s *Server) Report(w http.ResponseWriter, r *http.Request) {
	st, err := s.stats.Statistics(r.Context(), statsQuery(r))
	if err != nil {
		response.Error(w, r, "can't get report statistics", err)
		return
	}

	now := s.now().In(s.stats.Location())
	buf := &bytes.Buffer{}
	if err := s.report.HTML(buf, st, now); err != nil {
		response.Error(w, r, "can't render report", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", report.Filename(st.Period, now)))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// SalesChannels splits all orders into in-store and online sales.
func (s *Server) SalesChannels(w http.ResponseWriter, r *http.Request) {
	sc, err := s.stats.Channels(r.Context())
	if err != nil {
		response.Error(w, r, "can't get sales channels", err)
		return
	}
	response.JSON(w, r, http.StatusOK, dto.ConvertEntitySalesChannelsToDto(sc))
}

// POSStatistics summarises saved receipts.
func (s *Server) POSStatistics(w http.ResponseWriter, r *http.Request) {
	ps, err := s.stats.POS(r.Context())
	if err != nil {
		response.Error(w, r, "can't get pos statistics", err)
		return
	}
	response.JSON(w, r, http.StatusOK, dto.ConvertEntityPOSStatisticsToDto(ps))
}
