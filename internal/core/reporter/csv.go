package reporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"neoftp/internal/core/model"
)

// CollectRows 从任务结果中提取表头与所有行
// Result 可以是 TabularData 或元素为 TabularData 的 []interface{}
func CollectRows(results []*model.TaskResult) (headers []string, rows [][]string) {
	add := func(t TabularData) {
		if len(headers) == 0 {
			headers = t.Headers()
		}
		rows = append(rows, t.Rows()...)
	}

	for _, res := range results {
		if res == nil || res.Result == nil {
			continue
		}
		switch v := res.Result.(type) {
		case TabularData:
			add(v)
		case []interface{}:
			for _, item := range v {
				if t, ok := item.(TabularData); ok {
					add(t)
				}
			}
		}
	}
	return headers, rows
}

// SaveCsvResult 一次性将结果保存为 CSV
func SaveCsvResult(path string, results []*model.TaskResult) error {
	headers, rows := CollectRows(results)
	if len(headers) == 0 {
		return fmt.Errorf("no tabular data found to export")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer f.Close()

	// UTF-8 BOM，防止 Excel 打开乱码
	if _, err := f.WriteString("\xEF\xBB\xBF"); err != nil {
		return fmt.Errorf("failed to write bom: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return w.Error()
}
