package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// EquipmentImportService загружает парк оборудования из xlsx-файла.
// Файлы приходят из разных источников, поэтому шапка таблицы ищется
// по содержимому, а не по фиксированной строке.
type EquipmentImportService struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewEquipmentImportService(db *pgxpool.Pool, logger *zap.Logger) *EquipmentImportService {
	return &EquipmentImportService{db: db, logger: logger}
}

type refEntity struct {
	ID   uuid.UUID
	Name string
}

// ImportResult - итог импорта одного файла.
type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

func (s *EquipmentImportService) ImportFile(ctx context.Context, filePath string) (*ImportResult, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer f.Close()

	var finalRows [][]string
	nameIdx, serialIdx, categoryIdx, locationIdx, employeeIdx, departmentIdx, teamIdx := -1, -1, -1, -1, -1, -1, -1
	headerRow := -1

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		for rIdx, row := range rows {
			rowStr := strings.ToLower(strings.Join(row, "|"))
			hasName := strings.Contains(rowStr, "название") || strings.Contains(rowStr, "наименование")
			hasSerial := strings.Contains(rowStr, "серийн") || strings.Contains(rowStr, "s/n")
			if !hasName || !hasSerial {
				continue
			}

			for cIdx, colName := range row {
				c := strings.ToLower(strings.TrimSpace(colName))
				switch {
				case strings.Contains(c, "название") || strings.Contains(c, "наименование"):
					nameIdx = cIdx
				case strings.Contains(c, "серийн") || strings.Contains(c, "s/n"):
					serialIdx = cIdx
				case strings.Contains(c, "категория") || strings.Contains(c, "тип"):
					categoryIdx = cIdx
				case strings.Contains(c, "располож") || strings.Contains(c, "адрес") || strings.Contains(c, "место"):
					locationIdx = cIdx
				case strings.Contains(c, "сотрудник") || strings.Contains(c, "ответствен"):
					employeeIdx = cIdx
				case strings.Contains(c, "отдел") || strings.Contains(c, "подразделение"):
					departmentIdx = cIdx
				case strings.Contains(c, "команда") || strings.Contains(c, "бригада"):
					teamIdx = cIdx
				}
			}
			if nameIdx != -1 && serialIdx != -1 {
				finalRows = rows
				headerRow = rIdx
				s.logger.Info("шапка таблицы найдена",
					zap.String("sheet", sheet), zap.Int("row", rIdx+1))
				break
			}
		}
		if headerRow != -1 {
			break
		}
	}

	if headerRow == -1 {
		return nil, fmt.Errorf("не найдена шапка таблицы: нужны колонки 'Название' и 'Серийный номер'")
	}

	departments := s.getRefEntities(ctx, "departments")
	teams := s.getRefEntities(ctx, "maintenance_teams")

	result := &ImportResult{}
	for i := headerRow + 1; i < len(finalRows); i++ {
		row := finalRows[i]
		name := safeCell(row, nameIdx)
		serial := safeCell(row, serialIdx)
		if name == "" || serial == "" || isSummaryRow(name) {
			result.Skipped++
			continue
		}

		departmentID := fuzzyFindRef(safeCell(row, departmentIdx), departments)
		teamID := fuzzyFindRef(safeCell(row, teamIdx), teams)
		if departmentID == uuid.Nil || teamID == uuid.Nil {
			s.logger.Warn("строка пропущена: отдел или команда не найдены в базе",
				zap.Int("row", i+1), zap.String("name", name))
			result.Skipped++
			continue
		}

		query := `
			INSERT INTO equipment
				(name, serial_number, category, location, assigned_employee, department_id, maintenance_team_id, status)
			VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6, $7, 'active')
			ON CONFLICT (serial_number)
			DO UPDATE SET
				name = EXCLUDED.name,
				category = COALESCE(EXCLUDED.category, equipment.category),
				location = COALESCE(EXCLUDED.location, equipment.location),
				assigned_employee = COALESCE(EXCLUDED.assigned_employee, equipment.assigned_employee),
				department_id = EXCLUDED.department_id,
				maintenance_team_id = EXCLUDED.maintenance_team_id
			RETURNING (xmax = 0) AS is_insert`

		var isInsert bool
		err := s.db.QueryRow(ctx, query,
			name, serial,
			safeCell(row, categoryIdx), safeCell(row, locationIdx), safeCell(row, employeeIdx),
			departmentID, teamID,
		).Scan(&isInsert)
		if err != nil {
			s.logger.Error("ошибка импорта строки",
				zap.Int("row", i+1), zap.String("name", name), zap.Error(err))
			result.Errors++
			continue
		}
		if isInsert {
			result.Created++
		} else {
			result.Updated++
		}
	}

	s.logger.Info("импорт оборудования завершён",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", result.Errors))
	return result, nil
}

func (s *EquipmentImportService) getRefEntities(ctx context.Context, table string) []refEntity {
	rows, err := s.db.Query(ctx, fmt.Sprintf("SELECT id, name FROM %s", table))
	if err != nil {
		return nil
	}
	defer rows.Close()
	var res []refEntity
	for rows.Next() {
		var e refEntity
		if err := rows.Scan(&e.ID, &e.Name); err != nil {
			continue
		}
		res = append(res, e)
	}
	return res
}

func fuzzyFindRef(excelName string, items []refEntity) uuid.UUID {
	cleanExcel := cleanRefName(excelName)
	if cleanExcel == "" {
		return uuid.Nil
	}
	for _, item := range items {
		cleanDB := cleanRefName(item.Name)
		if cleanDB == cleanExcel || strings.Contains(cleanDB, cleanExcel) || strings.Contains(cleanExcel, cleanDB) {
			return item.ID
		}
	}
	return uuid.Nil
}

func cleanRefName(in string) string {
	replacer := strings.NewReplacer(
		"отдел", "",
		"команда", "",
		"бригада", "",
		"\"", "",
		"«", "",
		"»", "",
		" ", "",
		".", "",
		"-", "",
	)
	return strings.TrimSpace(replacer.Replace(strings.ToLower(in)))
}

func isSummaryRow(val string) bool {
	v := strings.ToLower(strings.TrimSpace(val))
	return strings.Contains(v, "итого") || strings.Contains(v, "всего")
}

func safeCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
