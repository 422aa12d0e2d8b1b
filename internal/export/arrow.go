package export

import (
	"fmt"
	"io"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/nvandessel/netgen/internal/models"
)

// TractSchema is the column layout of the Arrow tract table.
var TractSchema = arrow.NewSchema([]arrow.Field{
	{Name: "source", Type: arrow.BinaryTypes.String},
	{Name: "target", Type: arrow.BinaryTypes.String},
	{Name: "name", Type: arrow.BinaryTypes.String},
	{Name: "receptor", Type: arrow.BinaryTypes.String},
	{Name: "connectivity", Type: arrow.PrimitiveTypes.Float64},
	{Name: "efficacy", Type: arrow.PrimitiveTypes.Float64},
	{Name: "stft", Type: arrow.PrimitiveTypes.Float64},
	{Name: "stfp", Type: arrow.PrimitiveTypes.Float64},
}, nil)

// WriteArrow writes every tract as one row of an Arrow IPC file. The file
// footer is written after the record batches, so w must be seekable.
func WriteArrow(w io.WriteSeeker, instances []*models.Instance) error {
	mem := memory.NewGoAllocator()
	b := array.NewRecordBuilder(mem, TractSchema)
	defer b.Release()

	source := b.Field(0).(*array.StringBuilder)
	target := b.Field(1).(*array.StringBuilder)
	name := b.Field(2).(*array.StringBuilder)
	receptor := b.Field(3).(*array.StringBuilder)
	con := b.Field(4).(*array.Float64Builder)
	eff := b.Field(5).(*array.Float64Builder)
	stft := b.Field(6).(*array.Float64Builder)
	stfp := b.Field(7).(*array.Float64Builder)

	for _, inst := range instances {
		for _, tract := range inst.Tracts {
			source.Append(inst.ID)
			target.Append(tract.Target)
			name.Append(tract.Name)
			receptor.Append(tract.Payload.Receptor)
			con.Append(tract.Payload.Connectivity)
			eff.Append(tract.Payload.Efficacy)
			stft.Append(tract.Payload.STFT)
			stfp.Append(tract.Payload.STFP)
		}
	}

	rec := b.NewRecord()
	defer rec.Release()

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(TractSchema), ipc.WithAllocator(mem))
	if err != nil {
		return fmt.Errorf("creating arrow writer: %w", err)
	}
	if err := fw.Write(rec); err != nil {
		fw.Close()
		return fmt.Errorf("writing arrow record: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("closing arrow writer: %w", err)
	}
	return nil
}
