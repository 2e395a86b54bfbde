// devdb.go
//
// Property QR guide service: properties, items and scannable instruction pages
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of qrguide.
// qrguide is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// qrguide is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with qrguide.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package devdb starts throwaway Postgres or MariaDB/MySQL containers for development and
// integration tests.
package devdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/localnerve/qrguide/internal/config"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Default images per database type
const (
	DefaultPostgresImage = "postgres:17-alpine"
	DefaultMariaDBImage  = "mariadb:11"
)

// Options describes the container to start
type Options struct {
	DBType       string // postgres, mysql or mariadb
	Image        string
	Database     string
	User         string
	Password     string
	RootPassword string
	// HostPort pins the container port to 127.0.0.1:HostPort. Empty picks a random port.
	HostPort string
}

// DevDB is a running database container
type DevDB struct {
	Options
	Container testcontainers.Container
	Host      string
	Port      string
}

// OptionsFromEnv reads DB_TYPE, DB_IMAGE, DB_DATABASE, DB_USER, DB_PASSWORD, DB_ROOT_PASSWORD
// and DEVDB_HOST_PORT, filling in development defaults.
func OptionsFromEnv() Options {
	opts := Options{
		DBType:       envOr("DB_TYPE", "postgres"),
		Image:        os.Getenv("DB_IMAGE"),
		Database:     envOr("DB_DATABASE", "qrguide"),
		User:         envOr("DB_USER", "qrguide"),
		Password:     envOr("DB_PASSWORD", "qrguide"),
		RootPassword: envOr("DB_ROOT_PASSWORD", "root"),
		HostPort:     os.Getenv("DEVDB_HOST_PORT"),
	}
	if opts.DBType == "sqlite" {
		opts.DBType = "postgres"
	}
	return opts
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (o Options) containerPort() string {
	if o.isMySQL() {
		return "3306"
	}
	return "5432"
}

func (o Options) isMySQL() bool {
	return o.DBType == "mysql" || o.DBType == "mariadb"
}

func (o Options) image() string {
	if o.Image != "" {
		return o.Image
	}
	if o.isMySQL() {
		return DefaultMariaDBImage
	}
	return DefaultPostgresImage
}

func (o Options) initEnv() map[string]string {
	if o.isMySQL() {
		return map[string]string{
			"MYSQL_ROOT_PASSWORD": o.RootPassword,
			"MYSQL_DATABASE":      o.Database,
		}
	}
	return map[string]string{
		"POSTGRES_USER":     o.User,
		"POSTGRES_PASSWORD": o.Password,
		"POSTGRES_DB":       o.Database,
	}
}

// Start runs the container and waits until the database accepts connections
func Start(ctx context.Context, opts Options) (*DevDB, error) {
	switch opts.DBType {
	case "postgres", "mysql", "mariadb":
	default:
		return nil, fmt.Errorf("devdb: unsupported DB_TYPE %q", opts.DBType)
	}

	tcpPort, err := nat.NewPort("tcp", opts.containerPort())
	if err != nil {
		return nil, fmt.Errorf("devdb: port: %w", err)
	}

	hostConfigModifier := func(hostConfig *container.HostConfig) {
		if opts.HostPort != "" {
			hostConfig.PortBindings = nat.PortMap{
				tcpPort: []nat.PortBinding{{HostIP: "127.0.0.1", HostPort: opts.HostPort}},
			}
		}
	}

	var waitFor wait.Strategy = wait.ForListeningPort(tcpPort).WithStartupTimeout(60 * time.Second)
	if !opts.isMySQL() {
		// postgres restarts once after running its init scripts
		waitFor = wait.ForAll(
			waitFor,
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60*time.Second),
		)
	}

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:              opts.image(),
			ExposedPorts:       []string{string(tcpPort)},
			Env:                opts.initEnv(),
			HostConfigModifier: hostConfigModifier,
			WaitingFor:         waitFor,
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("devdb: start %s: %w", opts.image(), err)
	}

	db := &DevDB{Options: opts, Container: ctr}

	host, err := ctr.Host(ctx)
	if err != nil {
		_ = db.Terminate(ctx)
		return nil, err
	}
	mapped, err := ctr.MappedPort(ctx, tcpPort)
	if err != nil {
		_ = db.Terminate(ctx)
		return nil, err
	}
	db.Host, db.Port = host, mapped.Port()

	if opts.isMySQL() {
		if err := bootstrapMySQL(ctx, db); err != nil {
			_ = db.Terminate(ctx)
			return nil, err
		}
	}
	return db, nil
}

// bootstrapMySQL creates the application user as root; the image only creates the database
func bootstrapMySQL(ctx context.Context, d *DevDB) error {
	conn, err := sql.Open("mysql", fmt.Sprintf("root:%s@tcp(%s:%s)/", d.RootPassword, d.Host, d.Port))
	if err != nil {
		return fmt.Errorf("devdb: connect as root: %w", err)
	}
	defer conn.Close()

	// Wait for connection to be really ready
	for i := 0; i < 30; i++ {
		if err = conn.PingContext(ctx); err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		return fmt.Errorf("devdb: %s not ready after 30 seconds: %w", d.DBType, err)
	}

	statements := []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", d.Database),
		fmt.Sprintf("CREATE USER IF NOT EXISTS '%s'@'%%' IDENTIFIED BY '%s'", d.User, d.Password),
		fmt.Sprintf("GRANT ALL PRIVILEGES ON `%s`.* TO '%s'@'%%'", d.Database, d.User),
		"FLUSH PRIVILEGES",
	}
	for _, stmt := range statements {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("devdb: mysql bootstrap: %w", err)
		}
	}
	return nil
}

// Apply points cfg at the container
func (d *DevDB) Apply(cfg *config.Config) {
	cfg.DBType = d.DBType
	cfg.DBHost = d.Host
	cfg.DBPort = d.Port
	cfg.DBDatabase = d.Database
	cfg.DBUser = d.User
	cfg.DBPassword = d.Password
}

// Env returns the settings to export so the server uses the container
func (d *DevDB) Env() map[string]string {
	return map[string]string{
		"DB_TYPE":     d.DBType,
		"DB_HOST":     d.Host,
		"DB_PORT":     d.Port,
		"DB_DATABASE": d.Database,
		"DB_USER":     d.User,
		"DB_PASSWORD": d.Password,
	}
}

// Terminate stops and removes the container
func (d *DevDB) Terminate(ctx context.Context) error {
	if d == nil || d.Container == nil {
		return nil
	}
	return d.Container.Terminate(ctx)
}

// ImageExists reports whether imageName is already present locally
func ImageExists(ctx context.Context, imageName string) (bool, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false, err
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, err
	}

	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == imageName {
				return true, nil
			}
		}
	}

	return false, nil
}
