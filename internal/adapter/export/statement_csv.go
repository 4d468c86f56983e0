package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/iho/creditbook/internal/domain"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

// StatementHeader is the first row of every exported statement.
var StatementHeader = []string{"Date", "Type", "Amount", "Balance", "Description"}

// StatementFilename is the download name for a client's statement.
func StatementFilename(clientID string) string {
	return fmt.Sprintf("statement_%s.csv", clientID)
}

// WriteStatementCSV streams st as CSV, flushing every few hundred rows so
// large statements never sit fully buffered.
func WriteStatementCSV(w io.Writer, st *domain.Statement) error {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)

	if err := writer.Write(StatementHeader); err != nil {
		return err
	}

	pending := 0
	for line := range st.Lines() {
		row := []string{
			line.Date.String(),
			string(line.Type),
			line.Amount.String(),
			line.RunningBalance.String(),
			line.Description,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
		pending++
		if pending >= csvFlushEvery {
			if err := flush(writer, buf); err != nil {
				return err
			}
			pending = 0
		}
	}

	return flush(writer, buf)
}

func flush(writer *csv.Writer, buf *bufio.Writer) error {
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return buf.Flush()
}
