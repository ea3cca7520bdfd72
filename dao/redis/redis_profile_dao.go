package redis

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"profile-server/db"
	"profile-server/geo"
	"profile-server/models"
)

const PROFILES_GEO_KEY_V1 = "profiles_geo_v1"
const PROFILE_MEMBER_FORMAT_V1 = "profile_v1:%s"

// LATEST_PROFILE_KEY_V1 holds the last profile applied to the store.
const LATEST_PROFILE_KEY_V1 = "profile_latest_v1"

// RedisProfileDAO persists sampled profiles, geo-indexed by transect midpoint.
type RedisProfileDAO struct {
	client db.RedisClient
}

// NewRedisProfileDAO initializes a RedisProfileDAO with the Redis client.
func NewRedisProfileDAO(client db.RedisClient) *RedisProfileDAO {
	return &RedisProfileDAO{client: client}
}

// UpsertProfile stores the record under its ID and indexes its transect midpoint.
func (dao *RedisProfileDAO) UpsertProfile(rec models.ProfileRecord) error {
	ctx := dao.client.GetContext()
	key := fmt.Sprintf(PROFILE_MEMBER_FORMAT_V1, rec.ID)
	mid := geo.Midpoint(rec.Path[0], rec.Path[1])
	if err := dao.client.AddLocationWithJSON(ctx, PROFILES_GEO_KEY_V1, key, mid.Lat, mid.Lng, rec); err != nil {
		return fmt.Errorf("[RedisProfileDAO] failed to upsert profile %s: %w", rec.ID, err)
	}
	return nil
}

// GetProfile returns the record with id, or nil if there is none.
func (dao *RedisProfileDAO) GetProfile(id string) (*models.ProfileRecord, error) {
	return dao.getRecord(fmt.Sprintf(PROFILE_MEMBER_FORMAT_V1, id))
}

// GetNearbyProfiles returns records whose transect midpoint lies within radius km.
func (dao *RedisProfileDAO) GetNearbyProfiles(lat, lon, radius float64) ([]models.ProfileRecord, error) {
	profilesJSON, err := dao.client.GetLocationsWithinRadius(PROFILES_GEO_KEY_V1, lat, lon, radius)
	if err != nil {
		return nil, fmt.Errorf("[RedisProfileDAO] failed to get profiles: %w", err)
	}

	records := make([]models.ProfileRecord, len(profilesJSON))
	for i, profileJSON := range profilesJSON {
		if err := json.Unmarshal([]byte(profileJSON), &records[i]); err != nil {
			return nil, fmt.Errorf("failed to unmarshal profile JSON: %w", err)
		}
	}
	return records, nil
}

// GetProfilesInBounds returns records whose transect midpoint lies inside b.
func (dao *RedisProfileDAO) GetProfilesInBounds(b models.Bounds) ([]models.ProfileRecord, error) {
	center, radius := geo.CoveringCircle(b)
	candidates, err := dao.GetNearbyProfiles(center.Lat, center.Lng, radius)
	if err != nil {
		return nil, err
	}
	records := make([]models.ProfileRecord, 0, len(candidates))
	for _, rec := range candidates {
		if geo.Contains(b, geo.Midpoint(rec.Path[0], rec.Path[1])) {
			records = append(records, rec)
		}
	}
	return records, nil
}

// SetLatestProfile caches the record last applied to the profile store.
func (dao *RedisProfileDAO) SetLatestProfile(rec models.ProfileRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal profile %s: %w", rec.ID, err)
	}
	if err := dao.client.Set(LATEST_PROFILE_KEY_V1, string(data)); err != nil {
		return fmt.Errorf("failed to set latest profile in redis: %w", err)
	}
	return nil
}

// GetLatestProfile returns the last applied record, or nil on a cache miss.
func (dao *RedisProfileDAO) GetLatestProfile() (*models.ProfileRecord, error) {
	return dao.getRecord(LATEST_PROFILE_KEY_V1)
}

// ListProfileIDs returns the IDs of all stored profiles.
func (dao *RedisProfileDAO) ListProfileIDs() ([]string, error) {
	keys, err := dao.client.Keys(fmt.Sprintf(PROFILE_MEMBER_FORMAT_V1, "*"))
	if err != nil {
		return nil, fmt.Errorf("failed to list profile keys: %w", err)
	}
	prefix := fmt.Sprintf(PROFILE_MEMBER_FORMAT_V1, "")
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, prefix))
	}
	sort.Strings(ids)
	return ids, nil
}

func (dao *RedisProfileDAO) DeleteProfile(id string) error {
	key := fmt.Sprintf(PROFILE_MEMBER_FORMAT_V1, id)
	if err := dao.client.Del(key); err != nil {
		return fmt.Errorf("failed to delete profile key %s: %w", key, err)
	}
	log.Printf("[RedisProfileDAO] Deleted profile %s", id)
	return nil
}

func (dao *RedisProfileDAO) getRecord(key string) (*models.ProfileRecord, error) {
	str, err := dao.client.Get(key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s from redis: %w", key, err)
	}
	var rec models.ProfileRecord
	if err := json.Unmarshal([]byte(str), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile JSON: %w", err)
	}
	return &rec, nil
}
