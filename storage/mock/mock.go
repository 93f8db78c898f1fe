package mock

import (
	"context"

	"github.com/sig-0/harvest/storage/types"
)

type (
	WriteRecordsDelegate  func(context.Context, string, []types.Record) (int, error)
	SaveRunReportDelegate func(context.Context, *types.RunReport) error
	RunReportsDelegate    func(context.Context, int32, int64) (*types.Page[*types.RunReport], error)
	RunReportDelegate     func(context.Context, string) (*types.RunReport, error)
	ListProvidersDelegate func(context.Context) ([]string, error)
)

type Storage struct {
	WriteRecordsFn  WriteRecordsDelegate
	SaveRunReportFn SaveRunReportDelegate
	RunReportsFn    RunReportsDelegate
	RunReportFn     RunReportDelegate
	ListProvidersFn ListProvidersDelegate
}

func (m *Storage) WriteRecords(
	ctx context.Context,
	providerID string,
	records []types.Record,
) (int, error) {
	if m.WriteRecordsFn != nil {
		return m.WriteRecordsFn(ctx, providerID, records)
	}

	return len(records), nil
}

func (m *Storage) SaveRunReport(ctx context.Context, report *types.RunReport) error {
	if m.SaveRunReportFn != nil {
		return m.SaveRunReportFn(ctx, report)
	}

	return nil
}

func (m *Storage) RunReports(
	ctx context.Context,
	limit int32,
	offset int64,
) (*types.Page[*types.RunReport], error) {
	if m.RunReportsFn != nil {
		return m.RunReportsFn(ctx, limit, offset)
	}

	return nil, nil
}

func (m *Storage) RunReport(ctx context.Context, id string) (*types.RunReport, error) {
	if m.RunReportFn != nil {
		return m.RunReportFn(ctx, id)
	}

	return nil, nil
}

func (m *Storage) ListProviders(ctx context.Context) ([]string, error) {
	if m.ListProvidersFn != nil {
		return m.ListProvidersFn(ctx)
	}

	return nil, nil
}
