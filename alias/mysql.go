package alias

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/huajiao-tv/rundeckbot/logic"
)

const createAliasTable = `CREATE TABLE IF NOT EXISTS rundeck_alias (
  id VARCHAR(191) NOT NULL,
  project VARCHAR(255) NOT NULL,
  job VARCHAR(255) NOT NULL,
  PRIMARY KEY (id)
) DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin`

// MySQLStore 别名存到 rundeck_alias 表，id 区分大小写
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore 连接 MySQL 并建表
func NewMySQLStore(ctx context.Context, host, user, pass, dbname string, maxConnNum int) (*MySQLStore, error) {
	connStr := fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=Local", user, pass, host, dbname)
	db, err := sql.Open("mysql", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if maxConnNum > 0 {
		db.SetMaxOpenConns(maxConnNum)
	}
	db.SetMaxIdleConns(2)

	if _, err := db.ExecContext(ctx, createAliasTable); err != nil {
		db.Close()
		return nil, err
	}
	return &MySQLStore{db: db}, nil
}

func (s *MySQLStore) Get(ctx context.Context, id string) (logic.Alias, error) {
	a := logic.Alias{ID: id}
	err := s.db.QueryRowContext(ctx, "SELECT project, job FROM rundeck_alias WHERE id = ?", id).Scan(&a.Project, &a.Job)
	if err == sql.ErrNoRows {
		return a, nil
	}
	return a, err
}

func (s *MySQLStore) Set(ctx context.Context, a logic.Alias) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO rundeck_alias(id, project, job) VALUES(?, ?, ?) ON DUPLICATE KEY UPDATE project = VALUES(project), job = VALUES(job)",
		a.ID, a.Project, a.Job)
	return err
}

func (s *MySQLStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM rundeck_alias WHERE id = ?", id)
	return err
}

func (s *MySQLStore) IDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM rundeck_alias")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close 关闭连接
func (s *MySQLStore) Close() error {
	return s.db.Close()
}
