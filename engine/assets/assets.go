package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/frameflight/engine/assets/loaders"
	"github.com/spaghettifunk/frameflight/engine/core"
	"github.com/spaghettifunk/frameflight/engine/renderer/metadata"
	"github.com/spaghettifunk/frameflight/engine/systems"
)

const reloadBacklog = 32

type AssetInfo struct {
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
	// Resource is the most recent successful load, nil before the first one.
	Resource *metadata.Resource
}

// Reload is produced for every asset that changed on disk while watched.
type Reload struct {
	Path     string
	Resource *metadata.Resource
	Err      error
}

// AssetManager indexes the asset directory, loads assets through the
// registered loaders and reloads them when they change.
type AssetManager struct {
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader
	jobs    *systems.JobSystem

	mutex sync.RWMutex

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	watching bool
	isClosed bool
	reloads  chan Reload
}

func NewAssetManager(jobs *systems.JobSystem) (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	am := &AssetManager{
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[metadata.ResourceType]Loader),
		jobs:     jobs,
		fsnotify: fsWatch,
		reloads:  make(chan Reload, reloadBacklog),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	// Register loaders
	am.registerLoader(metadata.ResourceTypeMaterial, &loaders.MaterialLoader{})
	return am, nil
}

// Initialize indexes every asset under assetsDir and, if watch is set,
// starts reloading the ones that change.
func (am *AssetManager) Initialize(assetsDir string, watch bool) error {
	if am.isClosed {
		return errors.New("asset manager already closed")
	}
	if err := am.watchRecursive(assetsDir, watch); err != nil {
		core.LogError("failed to index assets in '%s': %s", assetsDir, err)
		return err
	}
	if watch {
		am.watching = true
		go am.start()
	}
	core.LogInfo("indexed %d assets in '%s'", am.Count(), assetsDir)
	return nil
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// Count is the number of indexed assets.
func (am *AssetManager) Count() int {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return len(am.assets)
}

// Reloads delivers assets reloaded after a change on disk. Consumers should
// drain it from the goroutine that owns the data being updated.
func (am *AssetManager) Reloads() <-chan Reload {
	return am.reloads
}

// LoadAsset loads an indexed asset with the loader of its type. The resource
// it replaces, if any, is unloaded.
func (am *AssetManager) LoadAsset(path string) (*metadata.Resource, error) {
	am.mutex.RLock()
	asset, exists := am.assets[path]
	am.mutex.RUnlock()
	if !exists {
		return nil, fmt.Errorf("asset not found: %s", path)
	}

	loader, loaderExists := am.loaders[asset.Type]
	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for asset type: %d", asset.Type)
	}
	res, err := loader.Load(path)
	if err != nil {
		return nil, err
	}

	am.mutex.Lock()
	var previous *metadata.Resource
	if asset, exists = am.assets[path]; exists {
		previous = asset.Resource
		asset.Resource = res
		asset.LastLoaded = time.Now()
		am.assets[path] = asset
	}
	am.mutex.Unlock()

	if previous != nil {
		if err := am.UnloadAsset(previous); err != nil {
			core.LogWarn("failed to unload previous '%s': %s", path, err)
		}
	}
	return res, nil
}

// Loaded returns the current resource of an indexed asset, nil if it was
// never loaded.
func (am *AssetManager) Loaded(path string) *metadata.Resource {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return am.assets[path].Resource
}

// LoadAll loads every indexed asset of the given type on the job system and
// returns them ordered by path. The first failure is returned after all jobs ran.
func (am *AssetManager) LoadAll(assetType metadata.ResourceType) ([]*metadata.Resource, error) {
	am.mutex.RLock()
	paths := make([]string, 0, len(am.assets))
	for p, info := range am.assets {
		if info.Type == assetType {
			paths = append(paths, p)
		}
	}
	am.mutex.RUnlock()
	sort.Strings(paths)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	resources := make([]*metadata.Resource, len(paths))
	for i, p := range paths {
		i, p := i, p
		wg.Add(1)
		am.jobs.Submit(systems.JobTask{
			Name: p,
			Run: func() (any, error) {
				return am.LoadAsset(p)
			},
			OnComplete: func(result any) {
				resources[i] = result.(*metadata.Resource)
			},
			OnFailure: func(err error) {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			},
			OnDone: wg.Done,
		})
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return resources, nil
}

func (am *AssetManager) UnloadAsset(asset *metadata.Resource) error {
	loader, ok := am.loaders[asset.Type]
	if !ok {
		return fmt.Errorf("no loader registered for asset type: %d", asset.Type)
	}
	return loader.Unload(asset)
}

// Shutdown stops watching, closes the reload channel and unloads every
// loaded asset.
func (am *AssetManager) Shutdown() error {
	if am.isClosed {
		return nil
	}
	am.isClosed = true
	close(am.done)
	var errs []error
	if am.watching {
		<-am.stopped
	} else {
		close(am.reloads)
		errs = append(errs, am.fsnotify.Close())
	}

	am.mutex.Lock()
	var loaded []*metadata.Resource
	for path, info := range am.assets {
		if info.Resource != nil {
			loaded = append(loaded, info.Resource)
			info.Resource = nil
			am.assets[path] = info
		}
	}
	am.mutex.Unlock()
	for _, res := range loaded {
		errs = append(errs, am.UnloadAsset(res))
	}
	return errors.Join(errs...)
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			am.handleEvent(e)

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())
			am.publish(Reload{Err: err})

		case <-am.done:
			am.fsnotify.Close()
			close(am.reloads)
			return
		}
	}
}

func (am *AssetManager) handleEvent(e fsnotify.Event) {
	s, err := os.Stat(e.Name)
	if err == nil && s != nil && s.IsDir() {
		if e.Op&fsnotify.Create != 0 {
			if err := am.watchRecursive(e.Name, true); err != nil {
				core.LogError("failed to watch '%s': %s", e.Name, err)
			}
		}
		return
	}
	// Handle create or modify events
	if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
		if !am.handleFileEvent(e.Name) {
			return
		}
		res, err := am.LoadAsset(e.Name)
		if err != nil {
			core.LogError("failed to reload '%s': %s", e.Name, err)
		}
		am.publish(Reload{Path: e.Name, Resource: res, Err: err})
	}
	// Can't stat a deleted file, just drop it from the index.
	if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		am.removeAsset(e.Name)
	}
}

func (am *AssetManager) publish(r Reload) {
	select {
	case am.reloads <- r:
	case <-am.done:
	}
}

// watchRecursive indexes every file under path and, if watch is set, adds
// its directories to the watch list.
func (am *AssetManager) watchRecursive(path string, watch bool) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if watch {
				return am.fsnotify.Add(walkPath)
			}
			return nil
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// Handle the creation or modification of a file. Reports whether the file
// is a known asset.
func (am *AssetManager) handleFileEvent(path string) bool {
	assetType := determineAssetType(path)
	if assetType == metadata.ResourceTypeNone {
		return false
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	// a modified asset keeps its loaded resource until the reload replaces it
	if _, known := am.assets[path]; !known {
		am.assets[path] = AssetInfo{
			Path: path,
			Type: assetType,
		}
	}
	return true
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	am.mutex.Lock()
	info := am.assets[path]
	delete(am.assets, path)
	am.mutex.Unlock()

	if info.Resource != nil {
		if err := am.UnloadAsset(info.Resource); err != nil {
			core.LogWarn("failed to unload removed '%s': %s", path, err)
		}
	}
}

func determineAssetType(path string) metadata.ResourceType {
	switch filepath.Ext(path) {
	case ".toml":
		return metadata.ResourceTypeMaterial
	default:
		return metadata.ResourceTypeNone
	}
}
