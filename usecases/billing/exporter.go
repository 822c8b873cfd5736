package billing

import (
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/cockroachdb/errors"
	"gocloud.dev/gcerrors"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/repositories"
	"github.com/portal-apr/portal-apr-backend/repositories/clock"
	"github.com/portal-apr/portal-apr-backend/usecases/executor_factory"
	"github.com/portal-apr/portal-apr-backend/utils"
)

var exportHeader = []string{
	"folio", "numero_socio", "rut", "nombre", "periodo", "consumo_m3",
	"cargo_fijo", "cargo_consumo", "subsidio", "recargo", "saldo_anterior",
	"total", "total_clp", "estado", "fecha_emision", "fecha_vencimiento",
}

type exportRepository interface {
	ListBoletaExportRows(ctx context.Context, exec repositories.Executor, periodo models.Periodo) ([]models.BoletaExportRow, error)
}

type Exporter struct {
	executorFactory executor_factory.ExecutorFactory
	repository      exportRepository
	blobRepository  repositories.BlobRepository
	bucketUrl       string
	clock           clock.Clock
}

func NewExporter(
	executorFactory executor_factory.ExecutorFactory,
	repository exportRepository,
	blobRepository repositories.BlobRepository,
	bucketUrl string,
) *Exporter {
	return &Exporter{
		executorFactory: executorFactory,
		repository:      repository,
		blobRepository:  blobRepository,
		bucketUrl:       bucketUrl,
		clock:           clock.New(),
	}
}

// ExportPeriod writes the boletas of the periodo as a CSV file in the export bucket. The
// signed url is left empty on buckets that cannot sign.
func (e *Exporter) ExportPeriod(ctx context.Context, periodo models.Periodo) (models.ExportResult, error) {
	if e.bucketUrl == "" {
		return models.ExportResult{}, errors.Wrap(models.UnprocessableEntityError, "no export bucket is configured")
	}

	rows, err := e.repository.ListBoletaExportRows(ctx, e.executorFactory.NewExecutor(), periodo)
	if err != nil {
		return models.ExportResult{}, err
	}

	fileName := fmt.Sprintf("boletas/%s/boletas-%s-%d.csv", periodo, periodo, e.clock.Now().Unix())
	stream, err := e.blobRepository.OpenStream(ctx, e.bucketUrl, fileName, "text/csv")
	if err != nil {
		return models.ExportResult{}, err
	}

	if err := writeExport(csv.NewWriter(stream), rows); err != nil {
		_ = stream.Close()
		return models.ExportResult{}, errors.Wrap(err, "error while writing export")
	}
	if err := stream.Close(); err != nil {
		return models.ExportResult{}, errors.Wrap(err, "error while closing export")
	}

	result := models.ExportResult{Periodo: periodo, FileName: fileName, Rows: len(rows)}
	url, err := e.blobRepository.GenerateSignedUrl(ctx, e.bucketUrl, fileName)
	switch {
	case err == nil:
		result.SignedUrl = url
	case gcerrors.Code(err) == gcerrors.Unimplemented:
	default:
		return models.ExportResult{}, err
	}

	utils.LoggerFromContext(ctx).InfoContext(ctx, "boletas exported",
		"periodo", periodo.String(), "file", fileName, "rows", len(rows))
	return result, nil
}

func writeExport(w *csv.Writer, rows []models.BoletaExportRow) error {
	if err := w.Write(exportHeader); err != nil {
		return err
	}
	for _, row := range rows {
		b := row.Boleta
		record := []string{
			strconv.FormatInt(b.Folio, 10),
			strconv.Itoa(row.NumeroSocio),
			row.Rut,
			row.Nombre,
			b.Periodo.String(),
			strconv.FormatFloat(b.ConsumoM3, 'f', -1, 64),
			strconv.FormatInt(b.CargoFijo, 10),
			strconv.FormatInt(b.CargoConsumo, 10),
			strconv.FormatInt(b.Subsidio, 10),
			strconv.FormatInt(b.Recargo, 10),
			strconv.FormatInt(b.SaldoAnterior, 10),
			strconv.FormatInt(b.Total, 10),
			utils.FormatCLP(b.Total),
			string(b.Estado),
			b.FechaEmision.Format("2006-01-02"),
			b.FechaVencimiento.Format("2006-01-02"),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
