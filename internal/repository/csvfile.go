package repository

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// 存量数据文件沿用 CP949（EUC-KR）编码，读写都要经过转码，
// 否则旧文件里的韩文标题会损坏，无法保证往返一致。

// readTable 读取 CP949 编码的 CSV 表格，返回表头和数据行
func readTable(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(transform.NewReader(f, korean.EUCKR.NewDecoder()))
	// 旧文件可能出现列数不齐的行，放宽校验
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("解析 CSV 失败 %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	return records[0], records[1:], nil
}

// writeTable 以 CP949 编码全量覆盖写入 CSV 表格
func writeTable(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建文件失败 %s: %w", path, err)
	}

	tw := transform.NewWriter(f, korean.EUCKR.NewEncoder())
	w := csv.NewWriter(tw)

	if err := w.Write(header); err != nil {
		f.Close()
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	if err := tw.Close(); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

// normalizeColumns 表头归一化（去空白 + 小写），返回列名到下标的映射
func normalizeColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

// field 按列名取值，列缺失或行太短时返回空串
func field(row []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
