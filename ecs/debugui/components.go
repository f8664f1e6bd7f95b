package debugui

import (
	"reflect"

	"github.com/plus3/flagecs/ecs"
)

type EntityBrowser struct {
	cache              *EntityBrowserCache
	selectedEntityId   ecs.EntityID
	filterText         string
	filterType         string
	maxEntitiesPerPage int
	currentPage        int
}

type ComponentInspector struct {
	selectedEntityId ecs.EntityID
	fields           map[reflect.Type][]inspectedField
}

type TypeIndexViewer struct {
	cache         *TypeIndexViewerCache
	selectedType  string
	sortColumn    int
	sortAscending bool
}

type PerformanceStats struct {
	historyFrames int
	frameHistory  []float32
	frameIndex    int
}

// FilterDebugger builds a filter from checkboxes: one column per stage, one
// row per registered component type.
type FilterDebugger struct {
	selected map[stageName]map[string]bool
}

type stageName int

const (
	stageAll stageName = iota
	stageAny
	stageOnly
	stageExclude
	stageCount
)

var stageLabels = [stageCount]string{"all", "any", "only", "exclude"}
