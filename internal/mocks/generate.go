package mocks

//go:generate mockery --name Spawner --srcpkg github.com/chook-lab/chook/internal/dispatch --output ./dispatch --outpkg dispatchmocks --with-expecter
