package boneoverlay

// FrustumTestRadius is the radius of the sphere each bone is treated as when testing it against the camera frustum.
const FrustumTestRadius = 0.1

// fadeBand is the fraction of a maximum distance over which markers (and labels) fade out.
const fadeBand = 0.2

// minLabelAlpha is the label alpha at or below which labels aren't drawn.
const minLabelAlpha = 0.1

// DistanceCache holds the camera-to-bone distances for a single frame. It's rebuilt at most once per frame tick.
type DistanceCache struct {
	distances map[NodeID]float64
	lastFrame uint64
	valid     bool
}

// NewDistanceCache returns an empty DistanceCache.
func NewDistanceCache() *DistanceCache {
	return &DistanceCache{distances: map[NodeID]float64{}}
}

// Update recomputes every bone's distance from the camera position given, unless the cache was already built on this frame.
// It returns whether the cache was rebuilt.
func (cache *DistanceCache) Update(frame uint64, cameraPosition Vector, graph SceneGraph, bones []*BoneInfo) bool {

	if cache.valid && cache.lastFrame == frame {
		return false
	}

	clear(cache.distances)

	for _, bone := range bones {
		if !graph.Alive(bone.Node) {
			continue
		}
		cache.distances[bone.Node] = graph.WorldPosition(bone.Node).Distance(cameraPosition)
	}

	cache.lastFrame = frame
	cache.valid = true

	return true

}

// Distance returns the cached distance to the node and whether the node is in the cache.
func (cache *DistanceCache) Distance(id NodeID) (float64, bool) {
	d, ok := cache.distances[id]
	return d, ok
}

// Len returns the number of cached distances.
func (cache *DistanceCache) Len() int {
	return len(cache.distances)
}

// Clear empties the cache, so the next Update() always rebuilds it.
func (cache *DistanceCache) Clear() {
	clear(cache.distances)
	cache.valid = false
}

// VisibilityFilter decides whether a bone should be drawn, and how opaque, based on its distance from the camera and whether
// it's inside the camera's view frustum. The frustum planes are cached, and only re-extracted when the frame tick or the camera's
// pose changes.
type VisibilityFilter struct {
	frustum         Frustum
	lastFrame       uint64
	lastPosition    Vector
	lastRotation    Matrix4
	valid           bool
	frustumRebuilds int
}

// Prepare makes sure the cached frustum matches the camera for this frame.
func (filter *VisibilityFilter) Prepare(frame uint64, camera CameraInfo) {

	position := camera.WorldPosition()
	rotation := camera.WorldRotation()

	if filter.valid && filter.lastFrame == frame && filter.lastPosition.Equals(position) && filter.lastRotation.Equals(rotation) {
		return
	}

	filter.frustum = camera.FrustumPlanes()
	filter.lastFrame = frame
	filter.lastPosition = position
	filter.lastRotation = rotation
	filter.valid = true
	filter.frustumRebuilds++

}

// Invalidate forces the next Prepare() to re-extract the frustum planes.
func (filter *VisibilityFilter) Invalidate() {
	filter.valid = false
}

// Frustum returns the cached frustum.
func (filter *VisibilityFilter) Frustum() Frustum {
	return filter.frustum
}

// Visible returns whether a bone at the position and distance given should be drawn, along with its fade alpha.
func (filter *VisibilityFilter) Visible(settings *Settings, position Vector, distance float64) (float64, bool) {

	if settings.EnableDistanceFilter && (distance < settings.MinRenderDistance || distance > settings.MaxRenderDistance) {
		return 0, false
	}

	if !filter.frustum.ContainsSphere(position, FrustumTestRadius) {
		return 0, false
	}

	if settings.EnableDistanceFilter && settings.DistanceFadeEnabled {
		return FadeAlpha(distance, settings.MaxRenderDistance), true
	}

	return 1, true

}

// LabelAlpha returns the alpha a bone's label should be drawn with, and whether it should be drawn at all.
// Labels have their own, shorter distance window, and are dropped once they've faded to minLabelAlpha or below.
func LabelAlpha(settings *Settings, distance float64) (float64, bool) {

	if !settings.ShowLabels || distance > settings.MaxLabelRenderDistance {
		return 0, false
	}

	alpha := 1.0
	if settings.DistanceFadeEnabled {
		alpha = FadeAlpha(distance, settings.MaxLabelRenderDistance)
	}

	return alpha, alpha > minLabelAlpha

}

// FadeAlpha returns the opacity for something at distance d with the maximum distance given: fully opaque until the last
// 20% of the range, then fading linearly to 0 at the maximum.
func FadeAlpha(d, maxDistance float64) float64 {
	if maxDistance <= 0 {
		return 0
	}
	return clamp01((maxDistance - d) / (maxDistance * fadeBand))
}
