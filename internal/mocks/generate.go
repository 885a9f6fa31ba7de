package mocks

//go:generate mockery --name Repository --srcpkg github.com/aevon-lab/metastore/internal/core/repository --output ./repository --outpkg repositorymocks
