package dsn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/config"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/dsn"
)

func TestCreate(t *testing.T) {
	tests := []struct {
		name string
		db   config.DB
		want string
	}{
		{
			name: "mysql with default extras",
			db: config.DB{
				GormEngine: config.EngineMySQL,
				User:       "ekklesia",
				Password:   "secret",
				Host:       "db",
				Port:       3306,
				Name:       "ekklesia",
			},
			want: "ekklesia:secret@tcp(db:3306)/ekklesia?charset=utf8mb4&parseTime=True&loc=UTC",
		},
		{
			name: "mysql with extras",
			db: config.DB{
				GormEngine: config.EngineMySQL,
				User:       "u",
				Password:   "p",
				Host:       "localhost",
				Port:       3307,
				Name:       "n",
				Extras:     "parseTime=True",
			},
			want: "u:p@tcp(localhost:3307)/n?parseTime=True",
		},
		{
			name: "postgres escapes credentials",
			db: config.DB{
				GormEngine: config.EnginePostgres,
				User:       "admin",
				Password:   "p@ss word",
				Host:       "pg",
				Port:       5432,
				Name:       "ekklesia",
			},
			want: "postgresql://admin:p%40ss%20word@pg:5432/ekklesia?sslmode=disable",
		},
		{
			name: "postgres with extras",
			db: config.DB{
				GormEngine: config.EnginePostgres,
				User:       "admin",
				Password:   "pw",
				Host:       "pg",
				Port:       5432,
				Name:       "ekklesia",
				Extras:     "sslmode=require",
			},
			want: "postgresql://admin:pw@pg:5432/ekklesia?sslmode=require",
		},
		{
			name: "sqlite path",
			db:   config.DB{GormEngine: config.EngineSQLite, Path: "/tmp/e.db"},
			want: "/tmp/e.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		},
		{
			name: "sqlite default path",
			db:   config.DB{GormEngine: config.EngineSQLite},
			want: "ekklesia.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dsn.Create(&config.Config{DB: tt.db}))
		})
	}
}
