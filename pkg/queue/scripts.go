package queue

import "github.com/redis/go-redis/v9"

// Job hashes live at <name>:job:<id>; scripts receive that prefix in ARGV because the
// job id is only known inside the script. Not cluster-safe.

const trimLua = `
local function trim(setKey, keep, prefix)
  if keep < 0 then return end
  local n = redis.call('ZCARD', setKey)
  if n <= keep then return end
  local ids = redis.call('ZRANGE', setKey, 0, n - keep - 1)
  for _, id in ipairs(ids) do
    redis.call('DEL', prefix .. id)
    redis.call('ZREM', setKey, id)
  end
end
`

// KEYS: job, wait
// ARGV: id, data, maxAttempts, now
var addScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('HSET', KEYS[1],
  'id', ARGV[1],
  'data', ARGV[2],
  'attemptsMade', '0',
  'maxAttempts', ARGV[3],
  'state', 'waiting',
  'createdAt', ARGV[4])
redis.call('RPUSH', KEYS[2], ARGV[1])
return 1
`)

// KEYS: wait, active, delayed
// ARGV: now, jobPrefix
var fetchScript = redis.NewScript(`
local due = redis.call('ZRANGEBYSCORE', KEYS[3], '-inf', ARGV[1])
for _, id in ipairs(due) do
  redis.call('ZREM', KEYS[3], id)
  redis.call('RPUSH', KEYS[1], id)
  redis.call('HSET', ARGV[2] .. id, 'state', 'waiting')
end

while true do
  local id = redis.call('LPOP', KEYS[1])
  if not id then
    return false
  end
  local jobKey = ARGV[2] .. id
  if redis.call('EXISTS', jobKey) == 1 then
    redis.call('ZADD', KEYS[2], ARGV[1], id)
    redis.call('HSET', jobKey, 'state', 'active', 'processedOn', ARGV[1])
    local f = redis.call('HMGET', jobKey, 'data', 'attemptsMade', 'maxAttempts')
    return {id, f[1], f[2], f[3]}
  end
end
`)

// KEYS: active, completed, job
// ARGV: id, now, keep, jobPrefix
var completeScript = redis.NewScript(trimLua + `
if redis.call('ZREM', KEYS[1], ARGV[1]) == 0 then
  return -1
end
redis.call('HSET', KEYS[3], 'state', 'completed', 'finishedOn', ARGV[2])
redis.call('HDEL', KEYS[3], 'failedReason')
redis.call('ZADD', KEYS[2], ARGV[2], ARGV[1])
trim(KEYS[2], tonumber(ARGV[3]), ARGV[4])
return 1
`)

// KEYS: active, delayed, failed, job
// ARGV: id, now, reason, retry (0|1), dueAt, keep, jobPrefix
var failScript = redis.NewScript(trimLua + `
if redis.call('ZREM', KEYS[1], ARGV[1]) == 0 then
  return -1
end
redis.call('HINCRBY', KEYS[4], 'attemptsMade', 1)
redis.call('HSET', KEYS[4], 'failedReason', ARGV[3])
if ARGV[4] == '1' then
  redis.call('HSET', KEYS[4], 'state', 'delayed')
  redis.call('ZADD', KEYS[2], ARGV[5], ARGV[1])
  return 1
end
redis.call('HSET', KEYS[4], 'state', 'failed', 'finishedOn', ARGV[2])
redis.call('ZADD', KEYS[3], ARGV[2], ARGV[1])
trim(KEYS[3], tonumber(ARGV[6]), ARGV[7])
return 2
`)

// KEYS: active, delayed, job
// ARGV: id, dueAt, reason
var postponeScript = redis.NewScript(`
if redis.call('ZREM', KEYS[1], ARGV[1]) == 0 then
  return -1
end
redis.call('HSET', KEYS[3], 'state', 'delayed', 'failedReason', ARGV[3])
redis.call('ZADD', KEYS[2], ARGV[2], ARGV[1])
return 1
`)

// KEYS: failed, wait, job
// ARGV: id
var retryFailedScript = redis.NewScript(`
if redis.call('ZREM', KEYS[1], ARGV[1]) == 0 then
  return 0
end
redis.call('HSET', KEYS[3], 'state', 'waiting', 'attemptsMade', '0')
redis.call('HDEL', KEYS[3], 'failedReason', 'finishedOn', 'processedOn')
redis.call('RPUSH', KEYS[2], ARGV[1])
return 1
`)

// KEYS: active, wait
// ARGV: cutoff, jobPrefix
var requeueStalledScript = redis.NewScript(`
local ids = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
for _, id in ipairs(ids) do
  redis.call('ZREM', KEYS[1], id)
  redis.call('RPUSH', KEYS[2], id)
  redis.call('HSET', ARGV[2] .. id, 'state', 'waiting')
end
return #ids
`)
